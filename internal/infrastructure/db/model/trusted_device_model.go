package model

import (
	"time"
)

// TrustedDeviceModel stores one allow-listed device of a user.
type TrustedDeviceModel struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Fingerprint string    `gorm:"size:64;index;not null" json:"fingerprint"` // short hash of ip:user_agent
	IPAddress   string    `gorm:"size:50" json:"ip_address"`
	UserAgent   string    `gorm:"size:250" json:"user_agent"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name
func (TrustedDeviceModel) TableName() string {
	return "trusted_devices"
}
