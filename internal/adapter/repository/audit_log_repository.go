package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/domain/entity"
	"github.com/wekeepgrowing/semo-authn/internal/domain/repository"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/db/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLogRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditLogRepository creates the GORM-backed audit log repository.
func NewAuditLogRepository(db *gorm.DB) repository.AuditLogRepository {
	return &AuditLogRepositoryImpl{db: db}
}

// Create appends one audit event.
func (r *AuditLogRepositoryImpl) Create(ctx context.Context, log *entity.AuditLog) error {
	var details datatypes.JSON
	if log.Details != nil {
		raw, err := json.Marshal(log.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = datatypes.JSON(raw)
	}

	logModel := model.AuditLogModel{
		UserID:     log.UserID,
		Action:     string(log.Action),
		Resource:   log.Resource,
		ResourceID: log.ResourceID,
		Status:     string(log.Status),
		IPAddress:  log.IPAddress,
		UserAgent:  log.UserAgent,
		Details:    details,
	}
	return r.db.WithContext(ctx).Create(&logModel).Error
}

// ListByUser returns the user's most recent events, newest first.
func (r *AuditLogRepositoryImpl) ListByUser(ctx context.Context, userID string, limit int) ([]entity.AuditLog, error) {
	var models []model.AuditLogModel

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	logs := make([]entity.AuditLog, 0, len(models))
	for i := range models {
		m := &models[i]

		var details map[string]interface{}
		if len(m.Details) > 0 {
			if err := json.Unmarshal(m.Details, &details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
		}

		logs = append(logs, entity.AuditLog{
			ID:         m.ID,
			UserID:     m.UserID,
			Action:     entity.AuditAction(m.Action),
			Resource:   m.Resource,
			ResourceID: m.ResourceID,
			Status:     entity.AuditStatus(m.Status),
			IPAddress:  m.IPAddress,
			UserAgent:  m.UserAgent,
			Details:    details,
			CreatedAt:  m.CreatedAt,
		})
	}
	return logs, nil
}

// CountFailuresSince counts recent failed and blocked login events matching
// the email or the source IP. Emails live inside the details JSON because
// pre-auth failures carry no user id.
func (r *AuditLogRepositoryImpl) CountFailuresSince(ctx context.Context, email, ip string, since time.Time) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(&model.AuditLogModel{}).
		Where("action IN ?", []string{
			string(entity.AuditActionLoginAttempt),
			string(entity.AuditActionLoginBlocked),
		}).
		Where("status IN ?", []string{
			string(entity.AuditStatusFailure),
			string(entity.AuditStatusBlocked),
		}).
		Where("created_at > ?", since).
		Where("(ip_address = ? OR details->>'email' = ?)", ip, email).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
