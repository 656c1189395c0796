package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/db/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.UserModel{},
		&model.TrustedDeviceModel{},
		&model.AuditLogModel{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed")
	return nil
}

// EnsureBootstrapUser creates the default account when it does not exist
// yet and returns its id. The account starts without a password; the
// initial setup flow stores the first one.
func EnsureBootstrapUser(db *gorm.DB, email string, logger *zap.Logger) (string, error) {
	if email == "" {
		return "", fmt.Errorf("default user email is not configured")
	}

	var existing model.UserModel
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to look up bootstrap user: %w", err)
	}

	user := model.UserModel{
		ID:    uuid.NewString(),
		Email: email,
	}
	if err := db.Create(&user).Error; err != nil {
		return "", fmt.Errorf("failed to create bootstrap user: %w", err)
	}

	logger.Info("Bootstrap user created",
		zap.String("user_id", user.ID),
		zap.String("email", email),
	)
	return user.ID, nil
}
