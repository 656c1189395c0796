package config

// ServiceConfig identifies the running service instance.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	BaseURL     string `mapstructure:"base_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	AllowOrigins    []string `mapstructure:"allow_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // seconds
}

// LogConfig mirrors pkg/logger.Config.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	FilePath    string `mapstructure:"file_path"`
	Development bool   `mapstructure:"development"`
}
