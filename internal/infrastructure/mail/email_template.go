package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EmailTemplate is one renderable mail template. The body is an
// html/template with the fields of NewDeviceAlertData available.
type EmailTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// TemplateCatalog holds every mail template this service sends.
type TemplateCatalog struct {
	NewDeviceAlert EmailTemplate `yaml:"new_device_alert"`
}

// NewDeviceAlertData feeds the new-device notification template.
type NewDeviceAlertData struct {
	ServiceName string
	IP          string
	UserAgent   string
	When        string
}

const defaultNewDeviceAlertBody = `<!DOCTYPE html>
<html>
<body style="margin: 0; padding: 24px; font-family: Helvetica, Arial, sans-serif; color: #333333;">
	<h2 style="color: #5271ff;">New sign-in to your {{.ServiceName}} account</h2>
	<p>Your account was just accessed from a device we have not seen before.</p>
	<table style="border-collapse: collapse; margin: 16px 0;">
		<tr><td style="padding: 4px 12px 4px 0; color: #666666;">Time</td><td>{{.When}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0; color: #666666;">IP address</td><td>{{.IP}}</td></tr>
		<tr><td style="padding: 4px 12px 4px 0; color: #666666;">Browser</td><td>{{.UserAgent}}</td></tr>
	</table>
	<p>If this was you, no action is needed.</p>
	<p>If you do not recognize this sign-in, change your password immediately and review your trusted devices.</p>
</body>
</html>`

// DefaultTemplates returns the built-in template set used when no catalog
// file is configured.
func DefaultTemplates() *TemplateCatalog {
	return &TemplateCatalog{
		NewDeviceAlert: EmailTemplate{
			Subject: "New sign-in from an unrecognized device",
			Body:    defaultNewDeviceAlertBody,
		},
	}
}

// LoadTemplates reads a YAML template catalog. An empty path returns the
// built-in defaults; individual templates left blank in the file fall back
// to their defaults too.
func LoadTemplates(path string) (*TemplateCatalog, error) {
	catalog := DefaultTemplates()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mail template catalog: %w", err)
	}

	var loaded TemplateCatalog
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse mail template catalog: %w", err)
	}

	if loaded.NewDeviceAlert.Subject != "" {
		catalog.NewDeviceAlert.Subject = loaded.NewDeviceAlert.Subject
	}
	if loaded.NewDeviceAlert.Body != "" {
		catalog.NewDeviceAlert.Body = loaded.NewDeviceAlert.Body
	}

	return catalog, nil
}

// RenderNewDeviceAlert produces the subject and HTML body of a new-device
// notification.
func (c *TemplateCatalog) RenderNewDeviceAlert(serviceName, ip, userAgent string, when time.Time) (subject, body string, err error) {
	tmpl, err := template.New("new_device_alert").Parse(c.NewDeviceAlert.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse new device alert template: %w", err)
	}

	data := NewDeviceAlertData{
		ServiceName: serviceName,
		IP:          ip,
		UserAgent:   userAgent,
		When:        when.UTC().Format(time.RFC1123),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render new device alert template: %w", err)
	}

	return c.NewDeviceAlert.Subject, buf.String(), nil
}
