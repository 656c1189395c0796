package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DeviceUseCase struct {
	userRepo   repository.UserRepository
	deviceRepo repository.TrustedDeviceRepository
	logger     *zap.Logger
}

func NewDeviceUseCase(
	userRepo repository.UserRepository,
	deviceRepo repository.TrustedDeviceRepository,
	logger *zap.Logger,
) *DeviceUseCase {
	return &DeviceUseCase{
		userRepo:   userRepo,
		deviceRepo: deviceRepo,
		logger:     logger,
	}
}

// Fingerprint derives a stable device identifier from the request origin.
func Fingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + ":" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}

// Check compares the request origin against the user's last known device and
// trusted device list, then records the origin as the new last known device.
// The comparison always runs against the values stored before this attempt.
func (u *DeviceUseCase) Check(ctx context.Context, user *entity.User, device dto.DeviceInfo) (*dto.DeviceCheckResult, error) {
	fingerprint := Fingerprint(device.IP, device.UserAgent)

	trusted, err := u.deviceRepo.Exists(ctx, user.ID, fingerprint, device.IP, device.UserAgent)
	if err != nil {
		return nil, err
	}

	isNewIP := user.LastKnownIP != "" && user.LastKnownIP != device.IP
	isNewUserAgent := user.LastKnownUserAgent != "" && user.LastKnownUserAgent != device.UserAgent

	result := &dto.DeviceCheckResult{
		Fingerprint:    fingerprint,
		IsNewIP:        isNewIP,
		IsNewUserAgent: isNewUserAgent,
		IsNewDevice:    !trusted && (isNewIP || isNewUserAgent),
		Trusted:        trusted,
	}

	if err := u.userRepo.UpdateLastKnownDevice(ctx, user.ID, device.IP, device.UserAgent); err != nil {
		u.logger.Warn("failed to record last known device",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}

	return result, nil
}

// List returns the user's trusted devices, newest first.
func (u *DeviceUseCase) List(ctx context.Context, userID string) ([]entity.TrustedDevice, error) {
	return u.deviceRepo.ListByUser(ctx, userID)
}

// TrustCurrentDevice registers the request origin as a trusted device.
// Registering an already trusted origin returns the existing record.
func (u *DeviceUseCase) TrustCurrentDevice(ctx context.Context, userID string, device dto.DeviceInfo) (*entity.TrustedDevice, error) {
	fingerprint := Fingerprint(device.IP, device.UserAgent)

	devices, err := u.deviceRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].Fingerprint == fingerprint {
			return &devices[i], nil
		}
	}

	trustedDevice := &entity.TrustedDevice{
		ID:          uuid.NewString(),
		UserID:      userID,
		Fingerprint: fingerprint,
		IPAddress:   device.IP,
		UserAgent:   device.UserAgent,
		CreatedAt:   time.Now(),
	}
	if err := u.deviceRepo.Create(ctx, trustedDevice); err != nil {
		return nil, err
	}

	u.logger.Info("trusted device registered",
		zap.String("user_id", userID),
		zap.String("fingerprint", fingerprint))

	return trustedDevice, nil
}

// RemoveTrustedDevice deletes one of the user's trusted devices.
func (u *DeviceUseCase) RemoveTrustedDevice(ctx context.Context, userID, deviceID string) error {
	return u.deviceRepo.Delete(ctx, userID, deviceID)
}
