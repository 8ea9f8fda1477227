// Package mailer отвечает за отправку писем (OTP для восстановления пароля).
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer — минимальный контракт отправки писем.
type Mailer interface {
	// Send отправляет письмо на один адрес.
	Send(to, subject, body string) error
}

// SMTPMailer отправляет письма через внешний SMTP-сервер (PLAIN auth).
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTP создаёт SMTPMailer. Если username пустой — аутентификация не используется.
func NewSMTP(host string, port int, from, username, password string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	const op = "mailer.Send"

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Noop — заглушка для локальной разработки (SMTP не настроен):
// письма никуда не отправляются.
type Noop struct{}

func (Noop) Send(_, _, _ string) error { return nil }
