// Package notify delivers best-effort status emails. Failures are logged by
// callers, never escalated into the decision loop.
package notify

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// Notifier sends one subject/body message. Implementations are best-effort.
type Notifier interface {
	Notify(subject, body string) error
}

// Nop discards every message; used in tests and when notifications are
// disabled.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// SMTPNotifier delivers messages over authenticated SMTP with STARTTLS.
type SMTPNotifier struct {
	from string
	to   string
	log  zerolog.Logger

	client *mail.Client
}

// NewSMTPNotifier builds the mail client. Credentials come from the
// environment, not from configuration files.
func NewSMTPNotifier(host string, port int, username, password, from, to string, log zerolog.Logger) (*SMTPNotifier, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return nil, fmt.Errorf("build smtp client: %w", err)
	}
	return &SMTPNotifier{from: from, to: to, log: log, client: client}, nil
}

// Notify sends one plain-text message.
func (n *SMTPNotifier) Notify(subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(n.to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := n.client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	n.log.Debug().Str("subject", subject).Msg("notification sent")
	return nil
}
