// Package mail delivers the daily report over SMTP. Plain text only.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender sends plain-text mail through an authenticated SMTP relay.
type Sender struct {
	Host     string
	Port     int
	From     string
	To       string
	Password string
}

// Send delivers one message. STARTTLS is negotiated by smtp.SendMail when
// the server offers it.
func (s *Sender) Send(subject, body string) error {
	if s.Host == "" || s.From == "" || s.To == "" {
		return fmt.Errorf("mail: sender not fully configured")
	}

	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + s.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := smtp.SendMail(addr, auth, s.From, []string{s.To}, []byte(msg)); err != nil {
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}
