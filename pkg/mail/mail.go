// Package mail builds and sends transactional email.
//
// Usage:
//
//	msg := mail.To("test@example.com").
//	    Subject("Your order ORD002 is confirmed").
//	    Body("<h1>Thanks!</h1>")
//
//	mailer := mail.FromConfig()   // MAIL_DRIVER: log | smtp | sendgrid
//	err := mailer.Send(ctx, msg)
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
)

// ErrNoRecipients is returned when a message has no To address.
var ErrNoRecipients = errors.New("mail: message has no recipients")

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, m *Message) error
}

// Sender identifies the From header.
type Sender struct {
	Address string
	Name    string
}

func (s Sender) String() string {
	if s.Name == "" {
		return s.Address
	}
	return fmt.Sprintf("%s <%s>", s.Name, s.Address)
}

func defaultSender() Sender {
	return Sender{
		Address: config.Get("MAIL_FROM", "orders@meatshop.local"),
		Name:    config.Get("MAIL_FROM_NAME", "Meat Shop"),
	}
}

// FromConfig picks a Mailer from MAIL_DRIVER. Unknown drivers and drivers
// missing credentials fall back to the log mailer with a warning.
func FromConfig() Mailer {
	from := defaultSender()
	switch driver := config.Get("MAIL_DRIVER", "log"); driver {
	case "smtp":
		cfg := SMTPConfig{
			Host:     config.Get("MAIL_HOST", "localhost"),
			Port:     config.Get("MAIL_PORT", "587"),
			Username: config.Get("MAIL_USERNAME", ""),
			Password: config.Get("MAIL_PASSWORD", ""),
			From:     from,
		}
		if cfg.Username != "" {
			return NewSMTP(cfg)
		}
		logger.Warn("mail: MAIL_USERNAME not configured, using log driver")
	case "sendgrid":
		if key := config.Get("SENDGRID_API_KEY", ""); key != "" {
			return NewSendGrid(key, from)
		}
		logger.Warn("mail: SENDGRID_API_KEY not configured, using log driver")
	case "log":
	default:
		logger.Warn("mail: unknown driver, using log driver", "driver", driver)
	}
	return NewLog(from)
}

// ─── Message ─────────────────────────────────────────────────────────────────

// Message is a fluent builder for an email.
type Message struct {
	to      []string
	cc      []string
	subject string
	body    string
	text    string
	err     error
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{to: addresses}
}

// CC adds CC recipients.
func (m *Message) CC(addresses ...string) *Message {
	m.cc = append(m.cc, addresses...)
	return m
}

// Subject sets the email subject.
func (m *Message) Subject(s string) *Message {
	m.subject = s
	return m
}

// Body sets the HTML body.
func (m *Message) Body(html string) *Message {
	m.body = html
	return m
}

// Text sets the plain-text alternative.
func (m *Message) Text(text string) *Message {
	m.text = text
	return m
}

// Render executes tmpl with data into the HTML body. A render error is
// kept and returned by Validate.
func (m *Message) Render(tmpl *template.Template, data any) *Message {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", tmpl.Name(), err)
		return m
	}
	m.body = buf.String()
	return m
}

// Recipients returns To followed by CC.
func (m *Message) Recipients() []string {
	return append(append([]string(nil), m.to...), m.cc...)
}

func (m *Message) GetSubject() string { return m.subject }
func (m *Message) HTML() string       { return m.body }

// PlainText returns the text body, or the HTML body when none was set.
func (m *Message) PlainText() string {
	if m.text != "" {
		return m.text
	}
	return m.body
}

// Validate reports builder errors and missing recipients.
func (m *Message) Validate() error {
	if m.err != nil {
		return m.err
	}
	if len(m.to) == 0 {
		return ErrNoRecipients
	}
	return nil
}

// raw renders RFC 5322 headers and an HTML (or plain) body.
func (m *Message) raw(from Sender) []byte {
	contentType, body := "text/html", m.body
	if body == "" {
		contentType, body = "text/plain", m.text
	}

	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + strings.Join(m.to, ", ") + "\r\n")
	if len(m.cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + m.subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
