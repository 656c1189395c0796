package dto

// DeviceInfo carries the request origin used for fingerprinting and audit.
type DeviceInfo struct {
	IP        string
	UserAgent string
}

// LoginParams are the credentials and origin of one login attempt.
type LoginParams struct {
	Email        string
	Password     string
	Device       DeviceInfo
	CaptchaToken string
}

// DeviceCheckResult describes how the current request origin compares with
// the user's last known device.
type DeviceCheckResult struct {
	Fingerprint    string
	IsNewIP        bool
	IsNewUserAgent bool
	IsNewDevice    bool
	Trusted        bool
}

// PasswordWarning is attached to a successful login when the password is due
// for rotation.
type PasswordWarning struct {
	Days    int
	Message string
}

// AuthResult is the outcome of a login attempt. RequiresTwoFactor means the
// password was accepted but the session must not be established until a
// second factor completes the challenge.
type AuthResult struct {
	Success           bool
	RequiresTwoFactor bool
	UserID            string
	ChallengeID       string
	UsedBackupCode    bool
	Device            *DeviceCheckResult
	PasswordWarning   *PasswordWarning
}
