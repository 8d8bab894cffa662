package notify

import (
	"context"
	"fmt"
	"net/smtp"
)

// Mailer sends plain-text reports over SMTP.
type Mailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func (m *Mailer) Notify(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, m.To, subject, body)
	if err := smtp.SendMail(addr, auth, m.From, []string{m.To}, []byte(message)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
