package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	domainerrors "github.com/wekeepgrowing/semo-authn/internal/domain/errors"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/db/model"

	"gorm.io/gorm"
)

type TrustedDeviceRepositoryImpl struct {
	db *gorm.DB
}

// NewTrustedDeviceRepository creates the GORM-backed device repository.
func NewTrustedDeviceRepository(db *gorm.DB) repository.TrustedDeviceRepository {
	return &TrustedDeviceRepositoryImpl{db: db}
}

// Convert DB model to domain entity
func toTrustedDeviceEntity(m *model.TrustedDeviceModel) entity.TrustedDevice {
	return entity.TrustedDevice{
		ID:          m.ID,
		UserID:      m.UserID,
		Fingerprint: m.Fingerprint,
		IPAddress:   m.IPAddress,
		UserAgent:   m.UserAgent,
		CreatedAt:   m.CreatedAt,
	}
}

// ListByUser returns all trusted devices of a user, newest first.
func (r *TrustedDeviceRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]entity.TrustedDevice, error) {
	var models []model.TrustedDeviceModel

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	devices := make([]entity.TrustedDevice, 0, len(models))
	for i := range models {
		devices = append(devices, toTrustedDeviceEntity(&models[i]))
	}
	return devices, nil
}

// Exists reports whether the user trusts a device matching the fingerprint
// or the exact (ip, userAgent) pair. Pair matching covers rows enrolled
// before the fingerprint scheme changed.
func (r *TrustedDeviceRepositoryImpl) Exists(ctx context.Context, userID, fingerprint, ip, userAgent string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.TrustedDeviceModel{}).
		Where("user_id = ?", userID).
		Where("(fingerprint = ? OR (ip_address = ? AND user_agent = ?))", fingerprint, ip, userAgent).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Create adds a device to the allow-list.
func (r *TrustedDeviceRepositoryImpl) Create(ctx context.Context, device *entity.TrustedDevice) error {
	deviceModel := model.TrustedDeviceModel{
		ID:          device.ID,
		UserID:      device.UserID,
		Fingerprint: device.Fingerprint,
		IPAddress:   device.IPAddress,
		UserAgent:   device.UserAgent,
	}
	return r.db.WithContext(ctx).Create(&deviceModel).Error
}

// Delete removes one of the user's devices.
func (r *TrustedDeviceRepositoryImpl) Delete(ctx context.Context, userID, deviceID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, deviceID).
		Delete(&model.TrustedDeviceModel{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domainerrors.ErrDeviceNotFound
	}
	return nil
}
