package core

import (
	"crypto/tls"
	"errors"

	"gopkg.in/gomail.v2"
)

var ErrMailNotConfigured = errors.New("mail server is not configured")

// Mailer delivers a single message.
type Mailer interface {
	SendMail(to []string, subject, body string) error
}

// SMTPMailer sends mails through the configured SMTP server.
type SMTPMailer struct {
	cfg ConfigurationMailServer
}

func NewSMTPMailer(cfg ConfigurationMailServer) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendMail(to []string, subject, body string) error {
	if m.cfg.SmtpHost == "" || m.cfg.SmtpPort == 0 {
		return ErrMailNotConfigured
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.SmtpUsername
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.SmtpHost, m.cfg.SmtpPort, m.cfg.SmtpUsername, m.cfg.SmtpPassword)
	if m.cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: m.cfg.SmtpHost}
	}
	return d.DialAndSend(msg)
}
