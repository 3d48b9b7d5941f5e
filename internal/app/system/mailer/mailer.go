// internal/app/system/mailer/mailer.go
//
// Package mailer sends outbound email over SMTP. Local development
// points it at Mailpit; production at a real relay.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Email is one outbound message. TextBody is required; HTMLBody is
// optional and, when present, is sent as a multipart alternative.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Config holds SMTP settings for the Mailer.
type Config struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string // empty means no auth (e.g. Mailpit)
	SMTPPass string
	From     string
	FromName string
}

// Sender is anything that can deliver an Email. Satisfied by *Mailer;
// tests swap in a recorder.
type Sender interface {
	Send(msg Email) error
}

// Mailer delivers email via a single SMTP relay.
type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

const multipartBoundary = "stackmentor-alt-boundary"

// Send delivers the message synchronously.
func (m *Mailer) Send(msg Email) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)

	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	body := m.buildMessage(msg)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *Mailer) buildMessage(msg Email) []byte {
	var b strings.Builder

	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.From)
	}

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTMLBody == "" {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.TextBody)
		return []byte(b.String())
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", multipartBoundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", multipartBoundary, msg.TextBody)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", multipartBoundary, msg.HTMLBody)
	fmt.Fprintf(&b, "--%s--\r\n", multipartBoundary)
	return []byte(b.String())
}
