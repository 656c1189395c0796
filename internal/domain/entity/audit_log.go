package entity

import (
	"time"
)

// AuditAction tags the kind of event an audit log row records.
type AuditAction string

const (
	// Login flow
	AuditActionLoginAttempt     AuditAction = "login_attempt"      // credential check failed or rejected
	AuditActionLoginBlocked     AuditAction = "login_blocked"      // attempt against a locked account
	AuditActionLogin2FARequired AuditAction = "login_2fa_required" // password ok, waiting on second factor
	AuditActionLoginSuccess     AuditAction = "login_success"      // fully completed authentication
	AuditActionNewDeviceLogin   AuditAction = "new_device_login"   // completed login from an unrecognized device
	AuditActionLogout           AuditAction = "logout"

	// Two-factor lifecycle
	AuditAction2FASetupInitiated       AuditAction = "2fa_setup_initiated"
	AuditAction2FAEnabled              AuditAction = "2fa_enabled"
	AuditAction2FAVerificationFailed   AuditAction = "2fa_verification_failed"
	AuditAction2FALoginSuccess         AuditAction = "2fa_login_success"
	AuditAction2FALoginFailed          AuditAction = "2fa_login_failed"
	AuditAction2FADisabled             AuditAction = "2fa_disabled"
	AuditAction2FADisableFailed        AuditAction = "2fa_disable_failed"
	AuditActionBackupCodesRegenerated  AuditAction = "backup_codes_regenerated"
	AuditActionEmergencyRecovery       AuditAction = "emergency_recovery_success"
	AuditActionEmergencyRecoveryFailed AuditAction = "emergency_recovery_failed"

	// Credential management
	AuditActionPasswordChanged AuditAction = "password_changed"
)

// AuditStatus is the coarse outcome of an audited event.
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
	AuditStatusBlocked AuditStatus = "blocked" // rejected before any credential check ran
)

// AuditLog is an append-only security event record. Rows are never updated
// or deleted by this service.
type AuditLog struct {
	ID         uint
	UserID     *string // nil for failures where no account could be resolved
	Action     AuditAction
	Resource   string // optional object the event acted on, e.g. "trusted_device"
	ResourceID string
	Status     AuditStatus
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
	CreatedAt  time.Time
}
