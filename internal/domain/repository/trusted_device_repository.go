package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
)

// TrustedDeviceRepository persists the per-user device allow-list.
type TrustedDeviceRepository interface {
	// ListByUser returns all trusted devices of a user, newest first.
	ListByUser(ctx context.Context, userID string) ([]entity.TrustedDevice, error)

	// Exists reports whether the user trusts a device matching the given
	// fingerprint or the exact (ip, userAgent) pair.
	Exists(ctx context.Context, userID, fingerprint, ip, userAgent string) (bool, error)

	// Create adds a device to the allow-list.
	Create(ctx context.Context, device *entity.TrustedDevice) error

	// Delete removes one of the user's devices. Returns ErrDeviceNotFound
	// when the id does not belong to the user.
	Delete(ctx context.Context, userID, deviceID string) error
}
