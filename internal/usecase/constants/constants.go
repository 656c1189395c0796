package constants

import (
	"time"
)

// Redis key prefixes. SessionKeyPrefix must match the prefix configured on
// the cookie session store, because single-session enforcement deletes the
// store's records directly.
const (
	SessionKeyPrefix         = "session:"
	SessionUserSetPrefix     = "session:user:"
	TwoFactorChallengePrefix = "2fa:challenge:"
	CaptchaChallengePrefix   = "captcha:challenge:"
	CaptchaPassPrefix        = "captcha:pass:"
)

// Short-lived state TTLs.
const (
	TwoFactorChallengeTTL = 5 * time.Minute
	CaptchaChallengeTTL   = 10 * time.Minute
	CaptchaPassTTL        = 5 * time.Minute
)

// SessionName is the cookie session name.
const SessionName = "session"

// UserIDContextKey carries the authenticated user id through the request
// context once auth middleware has run.
const UserIDContextKey = "user_id"

// CaptchaMaxAttempts bounds wrong answers per captcha challenge.
const CaptchaMaxAttempts = 5

// CaptchaFailureThreshold is how many recent login failures from one source
// engage the captcha gate when it is enabled. CaptchaFailureWindow bounds
// how far back failures count.
const (
	CaptchaFailureThreshold = 3
	CaptchaFailureWindow    = 24 * time.Hour
)

// AuditListDefaultLimit caps how many audit rows the self-service endpoint
// returns by default.
const AuditListDefaultLimit = 50
