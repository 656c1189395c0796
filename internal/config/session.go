package config

// SessionConfig holds cookie session settings for the Redis-backed store.
type SessionConfig struct {
	// Secret signs the session cookie. Must be set in production.
	Secret string `mapstructure:"secret"`
	// MaxAge is the session lifetime in seconds.
	MaxAge int `mapstructure:"max_age"`
	// Secure marks the cookie as HTTPS-only.
	Secure bool `mapstructure:"secure"`
	// PoolSize sizes the redigo connection pool behind the store.
	PoolSize int `mapstructure:"pool_size"`
}
