package entity

import (
	"time"
)

// Account lockout policy applied by the login flow.
const (
	MaxFailedLoginAttempts = 5
	LockoutDuration        = 15 * time.Minute
)

// Password age after which a login starts carrying a change warning.
const PasswordMaxAgeDays = 90

// User is the authentication subject: password credential, lockout state,
// last-seen device data and the TOTP two-factor sub-state.
type User struct {
	ID                  string
	Email               string
	PasswordHash        *string    // nil until the initial setup flow stores one
	PasswordChangedAt   *time.Time // nil counts as "older than the warning threshold"
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	LastKnownIP         string
	LastKnownUserAgent  string

	TOTPSecret          *string
	TOTPEnabled         bool
	TOTPBackupCodes     []string // hashed one-time codes, consumed destructively
	TOTPRecoveryKeyHash *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword reports whether a password credential has been configured.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsLocked reports whether the account is locked out at the given time.
// An expired LockedUntil means the account is usable again without any
// explicit unlock step.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// RecordLoginFailure increments the failure counter and engages the lockout
// once the threshold is reached. Returns true when this failure locked the
// account. The caller persists the result.
func (u *User) RecordLoginFailure(now time.Time) bool {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= MaxFailedLoginAttempts {
		until := now.Add(LockoutDuration)
		u.LockedUntil = &until
		return true
	}
	return false
}

// ResetLockout clears the failure counter and any active lock.
func (u *User) ResetLockout() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
}

// RecordLogin marks a completed authentication.
func (u *User) RecordLogin(now time.Time) {
	u.ResetLockout()
	t := now
	u.LastLoginAt = &t
}

// SetPassword stores a new password hash and stamps the change time.
func (u *User) SetPassword(hash string, now time.Time) {
	u.PasswordHash = &hash
	t := now
	u.PasswordChangedAt = &t
}

// PasswordAgeDays returns the age of the current password in whole days.
// A missing change timestamp is treated as one day past the warning
// threshold so legacy rows always warn.
func (u *User) PasswordAgeDays(now time.Time) int {
	if u.PasswordChangedAt == nil {
		return PasswordMaxAgeDays + 1
	}
	return int(now.Sub(*u.PasswordChangedAt).Hours() / 24)
}

// InitTwoFactor stores a fresh TOTP secret, backup code hashes and recovery
// key hash while keeping two-factor disabled until verification succeeds.
func (u *User) InitTwoFactor(secret string, backupCodeHashes []string, recoveryKeyHash string) {
	u.TOTPSecret = &secret
	u.TOTPEnabled = false
	u.TOTPBackupCodes = backupCodeHashes
	u.TOTPRecoveryKeyHash = &recoveryKeyHash
}

// EnableTwoFactor activates two-factor after a successful code verification.
func (u *User) EnableTwoFactor() {
	u.TOTPEnabled = true
}

// DisableTwoFactor clears the entire two-factor sub-state in one step:
// secret, enabled flag, backup codes and recovery key hash.
func (u *User) DisableTwoFactor() {
	u.TOTPSecret = nil
	u.TOTPEnabled = false
	u.TOTPBackupCodes = nil
	u.TOTPRecoveryKeyHash = nil
}
