package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey string
	from   Sender
}

func NewSendGrid(apiKey string, from Sender) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from}
}

func (s *SendGridMailer) Send(ctx context.Context, m *Message) error {
	if err := m.Validate(); err != nil {
		return err
	}

	p := sgmail.NewPersonalization()
	for _, to := range m.to {
		p.AddTos(sgmail.NewEmail("", to))
	}
	for _, cc := range m.cc {
		p.AddCCs(sgmail.NewEmail("", cc))
	}

	msg := sgmail.NewV3Mail()
	msg.SetFrom(sgmail.NewEmail(s.from.Name, s.from.Address))
	msg.Subject = m.subject
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/plain", m.PlainText()))
	if m.body != "" {
		msg.AddContent(sgmail.NewContent("text/html", m.body))
	}

	resp, err := sendgrid.NewSendClient(s.apiKey).SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("mail/sendgrid: send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("mail/sendgrid: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	return nil
}
