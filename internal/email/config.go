package email

import "fmt"

// Config - SMTP и список модераторов, которым уходят уведомления.
type Config struct {
	SMTPHost   string
	SMTPPort   int
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	Moderators []string
	AdminURL   string // ссылка на админку в письмах
}

// Enabled - уведомления выключены, пока не задан SMTP-хост и хотя бы один модератор.
func (c Config) Enabled() bool {
	return c.SMTPHost != "" && len(c.Moderators) > 0
}

// Validate проверяет валидность конфигурации
func (c Config) Validate() error {
	if c.SMTPHost == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTPPort)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}
