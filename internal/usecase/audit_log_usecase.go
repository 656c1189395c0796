package usecase

import (
	"context"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/constants"
	"github.com/wekeepgrowing/semo-authn/internal/usecase/dto"

	"go.uber.org/zap"
)

type AuditLogUseCase struct {
	auditRepo repository.AuditLogRepository
	logger    *zap.Logger
}

func NewAuditLogUseCase(auditRepo repository.AuditLogRepository, logger *zap.Logger) *AuditLogUseCase {
	return &AuditLogUseCase{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Log records one audit event. Persistence failures are logged and swallowed
// so auditing never blocks or fails an authentication flow.
func (u *AuditLogUseCase) Log(ctx context.Context, userID *string, action entity.AuditAction, status entity.AuditStatus, device dto.DeviceInfo, details map[string]interface{}) {
	event := &entity.AuditLog{
		UserID:    userID,
		Action:    action,
		Status:    status,
		IPAddress: device.IP,
		UserAgent: device.UserAgent,
		Details:   details,
	}

	if err := u.auditRepo.Create(ctx, event); err != nil {
		u.logger.Error("failed to persist audit log",
			zap.String("action", string(action)),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

// List returns the user's most recent audit events.
func (u *AuditLogUseCase) List(ctx context.Context, userID string, limit int) ([]entity.AuditLog, error) {
	if limit < 1 || limit > constants.AuditListDefaultLimit {
		limit = constants.AuditListDefaultLimit
	}
	return u.auditRepo.ListByUser(ctx, userID, limit)
}

// CountRecentFailures counts failed and blocked login events from the given
// email or IP inside the window. The captcha gate uses it to decide when a
// source is under failure pressure.
func (u *AuditLogUseCase) CountRecentFailures(ctx context.Context, email, ip string, window time.Duration) (int64, error) {
	return u.auditRepo.CountFailuresSince(ctx, email, ip, time.Now().Add(-window))
}
