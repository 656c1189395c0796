package model

import (
	"time"

	"gorm.io/datatypes"
)

// UserModel is the database row backing an authentication subject.
type UserModel struct {
	ID                  string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email               string     `gorm:"size:250;not null;uniqueIndex" json:"email"`
	PasswordHash        *string    `gorm:"size:250" json:"-"`                     // null until initial setup
	PasswordChangedAt   *time.Time `json:"password_changed_at,omitempty"`         // null until first change
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"failed_login_attempts"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`                // lockout expiry, null when unlocked
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`               // last completed authentication
	LastKnownIP         string     `gorm:"size:50" json:"last_known_ip,omitempty"`
	LastKnownUserAgent  string     `gorm:"size:250" json:"last_known_user_agent,omitempty"`

	// Two-factor sub-state
	TOTPSecret          *string        `gorm:"size:500" json:"-"`
	TOTPEnabled         bool           `gorm:"not null;default:false" json:"totp_enabled"`
	TOTPBackupCodes     datatypes.JSON `gorm:"type:jsonb" json:"-"` // array of hashed one-time codes
	TOTPRecoveryKeyHash *string        `gorm:"size:128" json:"-"`

	// Standard metadata fields
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name
func (UserModel) TableName() string {
	return "users"
}
