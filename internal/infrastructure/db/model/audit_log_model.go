package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLogModel stores one append-only security event. The service only
// ever inserts and reads these rows.
type AuditLogModel struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     *string        `gorm:"type:uuid;index" json:"user_id,omitempty"` // null for pre-auth failures
	Action     string         `gorm:"size:50;not null;index" json:"action"`
	Resource   string         `gorm:"size:50" json:"resource,omitempty"`
	ResourceID string         `gorm:"size:100" json:"resource_id,omitempty"`
	Status     string         `gorm:"size:20;not null" json:"status"` // success, failure, blocked
	IPAddress  string         `gorm:"size:50;index" json:"ip_address"`
	UserAgent  string         `gorm:"size:250" json:"user_agent"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"` // structured event details
	CreatedAt  time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name
func (AuditLogModel) TableName() string {
	return "audit_logs"
}
