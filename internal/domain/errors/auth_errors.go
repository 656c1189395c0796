package errors

import (
	"errors"
)

// Sentinel errors for every way an authentication operation can be refused.
// The message is the exact text shown to the caller, so two errors that must
// be indistinguishable to a client (unknown email vs. wrong password) share
// one sentinel.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the response never reveals which accounts exist.
	ErrInvalidCredentials = errors.New("Invalid credentials")

	// ErrAccountLocked deliberately omits the remaining lock time.
	ErrAccountLocked = errors.New("Account temporarily locked due to too many failed login attempts. Please try again later.")

	// ErrPasswordNotConfigured fires when the account exists but has never
	// completed the initial password setup.
	ErrPasswordNotConfigured = errors.New("Password not configured for this account. Please use the initial setup flow to create one.")

	// ErrTwoFactorRequired is a control signal: the password check passed but
	// the login must continue through the two-factor flow. It never reaches a
	// client as a plain error.
	ErrTwoFactorRequired = errors.New("Two-factor authentication required")

	ErrTwoFactorNotEnabled     = errors.New("Two-factor authentication is not enabled")
	ErrTwoFactorAlreadyEnabled = errors.New("Two-factor authentication is already enabled. Disable it before running setup again.")
	ErrTwoFactorNotInitiated   = errors.New("Two-factor setup has not been initiated")
	ErrInvalidTwoFactorCode    = errors.New("Invalid two-factor code")

	// ErrChallengeExpired covers an unknown, expired or already-consumed
	// two-factor login challenge.
	ErrChallengeExpired = errors.New("Invalid or expired login challenge")

	// ErrInvalidCaptcha covers an unknown, expired or exhausted captcha
	// challenge as well as a wrong answer.
	ErrInvalidCaptcha = errors.New("Invalid or expired captcha")

	// ErrCaptchaRequired fires when a source under failure pressure tries to
	// log in without a captcha pass token.
	ErrCaptchaRequired = errors.New("Captcha verification required")

	// ErrInvalidRecovery is the single response for every emergency recovery
	// failure; the audit log carries the specific reason.
	ErrInvalidRecovery = errors.New("Invalid credentials or recovery key")

	ErrUserNotFound   = errors.New("User not found")
	ErrDeviceNotFound = errors.New("Trusted device not found")
)

// PasswordPolicyError reports which password complexity rule was violated.
// The message is safe to show to the caller.
type PasswordPolicyError struct {
	Message string
}

func (e *PasswordPolicyError) Error() string {
	return e.Message
}

// NewPasswordPolicyError creates a policy violation with the given message.
func NewPasswordPolicyError(message string) *PasswordPolicyError {
	return &PasswordPolicyError{Message: message}
}

// IsPasswordPolicyError reports whether err is a password policy violation.
func IsPasswordPolicyError(err error) bool {
	var policyErr *PasswordPolicyError
	return errors.As(err, &policyErr)
}
