package repository

import (
	domainrepo "github.com/wekeepgrowing/semo-authn/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRepositories wires every repository implementation and returns the
// collection the use cases consume.
func InitRepositories(database *gorm.DB, redisClient *redis.Client) *domainrepo.Repositories {
	return &domainrepo.Repositories{
		User:          NewUserRepository(database),
		TrustedDevice: NewTrustedDeviceRepository(database),
		AuditLog:      NewAuditLogRepository(database),
		Cache:         NewCacheRepository(redisClient),
		Session:       NewSessionRepository(redisClient),
	}
}
