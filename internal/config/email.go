package config

// EmailConfig holds SMTP settings for security notification mail.
type EmailConfig struct {
	// Enabled gates all outgoing mail. Alerts are skipped silently when off.
	Enabled     bool   `mapstructure:"enabled"`
	SMTPHost    string `mapstructure:"smtp_host"`
	SMTPPort    int    `mapstructure:"smtp_port"`
	SMTPUser    string `mapstructure:"smtp_user"`
	SMTPPass    string `mapstructure:"smtp_pass"`
	SenderEmail string `mapstructure:"sender_email"`
	// TemplatePath points at the YAML mail template catalog. Built-in
	// templates are used when the file is absent.
	TemplatePath string `mapstructure:"template_path"`
}
