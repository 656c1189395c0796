package repository

// Repositories bundles every storage interface the use cases depend on.
type Repositories struct {
	User          UserRepository
	TrustedDevice TrustedDeviceRepository
	AuditLog      AuditLogRepository
	Cache         CacheRepository
	Session       SessionRepository
}
