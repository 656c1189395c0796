package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/db/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates the GORM-backed user repository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Convert domain entity to DB model
func toUserModel(user *entity.User) (*model.UserModel, error) {
	var codes datatypes.JSON
	if user.TOTPBackupCodes != nil {
		raw, err := json.Marshal(user.TOTPBackupCodes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode backup codes: %w", err)
		}
		codes = datatypes.JSON(raw)
	}

	return &model.UserModel{
		ID:                  user.ID,
		Email:               user.Email,
		PasswordHash:        user.PasswordHash,
		PasswordChangedAt:   user.PasswordChangedAt,
		FailedLoginAttempts: user.FailedLoginAttempts,
		LockedUntil:         user.LockedUntil,
		LastLoginAt:         user.LastLoginAt,
		LastKnownIP:         user.LastKnownIP,
		LastKnownUserAgent:  user.LastKnownUserAgent,
		TOTPSecret:          user.TOTPSecret,
		TOTPEnabled:         user.TOTPEnabled,
		TOTPBackupCodes:     codes,
		TOTPRecoveryKeyHash: user.TOTPRecoveryKeyHash,
		CreatedAt:           user.CreatedAt,
		UpdatedAt:           user.UpdatedAt,
	}, nil
}

// Convert DB model to domain entity
func toUserEntity(m *model.UserModel) (*entity.User, error) {
	var codes []string
	if len(m.TOTPBackupCodes) > 0 {
		if err := json.Unmarshal(m.TOTPBackupCodes, &codes); err != nil {
			return nil, fmt.Errorf("failed to decode backup codes: %w", err)
		}
	}

	return &entity.User{
		ID:                  m.ID,
		Email:               m.Email,
		PasswordHash:        m.PasswordHash,
		PasswordChangedAt:   m.PasswordChangedAt,
		FailedLoginAttempts: m.FailedLoginAttempts,
		LockedUntil:         m.LockedUntil,
		LastLoginAt:         m.LastLoginAt,
		LastKnownIP:         m.LastKnownIP,
		LastKnownUserAgent:  m.LastKnownUserAgent,
		TOTPSecret:          m.TOTPSecret,
		TOTPEnabled:         m.TOTPEnabled,
		TOTPBackupCodes:     codes,
		TOTPRecoveryKeyHash: m.TOTPRecoveryKeyHash,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}, nil
}

// FindByID looks a user up by id.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var userModel model.UserModel

	if err := r.db.WithContext(ctx).First(&userModel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toUserEntity(&userModel)
}

// FindByEmail looks a user up by email.
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.UserModel

	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return toUserEntity(&userModel)
}

// Create inserts a new user.
func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	userModel, err := toUserModel(user)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(userModel).Error
}

// Update writes the full row so cleared pointer fields become NULL.
func (r *UserRepositoryImpl) Update(ctx context.Context, user *entity.User) error {
	userModel, err := toUserModel(user)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(userModel).Error
}

// UpdateLastKnownDevice stores the most recent source address pair.
func (r *UserRepositoryImpl) UpdateLastKnownDevice(ctx context.Context, userID, ip, userAgent string) error {
	return r.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_known_ip":         ip,
			"last_known_user_agent": userAgent,
		}).Error
}

// ReplaceBackupCodes swaps the stored code list only when it still matches
// old. jsonb equality makes the compare independent of formatting, so a
// concurrent consumer of the same code loses the race and sees false.
func (r *UserRepositoryImpl) ReplaceBackupCodes(ctx context.Context, userID string, old, updated []string) (bool, error) {
	oldRaw, err := json.Marshal(old)
	if err != nil {
		return false, fmt.Errorf("failed to encode backup codes: %w", err)
	}
	newRaw, err := json.Marshal(updated)
	if err != nil {
		return false, fmt.Errorf("failed to encode backup codes: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND totp_backup_codes = ?", userID, datatypes.JSON(oldRaw)).
		Update("totp_backup_codes", datatypes.JSON(newRaw))
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
