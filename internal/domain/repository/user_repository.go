package repository

import (
	"context"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
)

// UserRepository persists authentication subjects.
type UserRepository interface {
	// FindByID looks a user up by id. Returns (nil, nil) when absent.
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// FindByEmail looks a user up by email. Returns (nil, nil) when absent.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create inserts a new user.
	Create(ctx context.Context, user *entity.User) error

	// Update writes the full user row, including cleared (nil) fields.
	Update(ctx context.Context, user *entity.User) error

	// UpdateLastKnownDevice stores the most recent (ip, user agent) pair
	// without touching the rest of the row.
	UpdateLastKnownDevice(ctx context.Context, userID, ip, userAgent string) error

	// ReplaceBackupCodes swaps the stored backup code list for a new one only
	// if the current list still equals old. Returns false when a concurrent
	// writer got there first.
	ReplaceBackupCodes(ctx context.Context, userID string, old, updated []string) (bool, error)
}
