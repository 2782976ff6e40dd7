package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Email - одно исходящее письмо
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
}

type Sender interface {
	Send(email *Email) error
}

// SMTPSender отправляет письма через gomail.
type SMTPSender struct {
	config Config
	dialer *gomail.Dialer
}

func NewSMTPSender(config Config) (*SMTPSender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	return &SMTPSender{
		config: config,
		dialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.Username, config.Password),
	}, nil
}

func (s *SMTPSender) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/html", email.HTMLBody)

	return s.dialer.DialAndSend(m)
}
