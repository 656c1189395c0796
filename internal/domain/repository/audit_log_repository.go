package repository

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
)

// AuditLogRepository appends and reads security audit events. There is no
// update or delete: the log is append-only.
type AuditLogRepository interface {
	// Create appends one audit event.
	Create(ctx context.Context, log *entity.AuditLog) error

	// ListByUser returns the user's most recent events, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.AuditLog, error)

	// CountFailuresSince counts failed and blocked login events for the
	// given email or source IP after the given time. Used to decide when the
	// captcha gate should engage.
	CountFailuresSince(ctx context.Context, email, ip string, since time.Time) (int64, error)
}
