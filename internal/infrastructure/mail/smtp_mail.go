package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer sends security notification mail over SMTP.
type SMTPMailer struct {
	dialer      *gomail.Dialer
	from        string
	serviceName string
	enabled     bool
	templates   *TemplateCatalog
	logger      *zap.Logger
}

// NewSMTPMailer builds the mailer from config. When mail is disabled the
// mailer still exists but every send is a logged no-op.
func NewSMTPMailer(cfg *config.EmailConfig, serviceName string, logger *zap.Logger) (*SMTPMailer, error) {
	templates, err := LoadTemplates(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	return &SMTPMailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:        cfg.SenderEmail,
		serviceName: serviceName,
		enabled:     cfg.Enabled,
		templates:   templates,
		logger:      logger,
	}, nil
}

// SendNewDeviceAlert notifies the account owner about a completed login from
// an unrecognized device.
func (m *SMTPMailer) SendNewDeviceAlert(ctx context.Context, to, ip, userAgent string, when time.Time) error {
	if !m.enabled {
		m.logger.Debug("Mail disabled, skipping new device alert",
			zap.String("to", to),
		)
		return nil
	}

	subject, body, err := m.templates.RenderNewDeviceAlert(m.serviceName, ip, userAgent, when)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send new device alert",
			zap.String("to", to),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send new device alert: %w", err)
	}

	m.logger.Info("New device alert sent",
		zap.String("to", to),
	)
	return nil
}
