package config

// SecurityConfig holds authentication policy settings.
type SecurityConfig struct {
	// AuthRequired disables the development bypass. When false, requests
	// without a session run as the default user instead of being rejected.
	AuthRequired bool `mapstructure:"auth_required"`
	// DefaultUserEmail is the bootstrap account. It is created on startup
	// when missing and is the principal used while AuthRequired is false.
	DefaultUserEmail string `mapstructure:"default_user_email"`
	// BcryptCost is the password hashing cost. Values below 12 are raised.
	BcryptCost int `mapstructure:"bcrypt_cost"`
	// TOTPIssuer names this service in authenticator apps.
	TOTPIssuer string `mapstructure:"totp_issuer"`
	// CaptchaEnabled turns on the captcha gate for login attempts from
	// sources with repeated recent failures.
	CaptchaEnabled bool `mapstructure:"captcha_enabled"`
}
