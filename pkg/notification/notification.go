// Package notification delivers one message over several channels.
//
// Define a Notification:
//
//	type OrderConfirmation struct { Order models.Order }
//	func (n *OrderConfirmation) Via() []string { return []string{notification.Mail, notification.Slack} }
//	func (n *OrderConfirmation) ToMail() notification.MailData {
//	    return notification.MailData{Subject: "Order " + n.Order.ID + " confirmed", Body: "..."}
//	}
//	func (n *OrderConfirmation) ToSlack() notification.SlackData {
//	    return notification.SlackData{Text: "New order " + n.Order.ID}
//	}
//
// Send:
//
//	notifier := notification.New(mailer, notification.WithSlack(url))
//	err := notifier.Send(ctx, "test@example.com", &OrderConfirmation{Order: o})
//
// A channel with no destination configured (no Slack URL, empty webhook
// URL) is logged and skipped rather than failed.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	khttp "github.com/shashiranjanraj/meatshop/pkg/http"
	"github.com/shashiranjanraj/meatshop/pkg/logger"
	"github.com/shashiranjanraj/meatshop/pkg/mail"
)

// Channel names returned by Via.
const (
	Mail    = "mail"
	Slack   = "slack"
	Webhook = "webhook"
)

// ------------------- Channel data structs -------------------

// MailData carries the data needed to send an email notification.
type MailData struct {
	To      string // overrides the notifiable address if set
	Subject string
	Body    string // HTML
	Text    string // plain-text fallback
}

// SlackData carries a Slack message payload.
type SlackData struct {
	WebhookURL  string // override default if set
	Text        string
	Attachments []SlackAttachment
}

// SlackAttachment is a single Slack message attachment block.
type SlackAttachment struct {
	Color  string `json:"color,omitempty"` // "good" | "warning" | "danger"
	Title  string `json:"title,omitempty"`
	Text   string `json:"text,omitempty"`
	Footer string `json:"footer,omitempty"`
}

// WebhookData carries an arbitrary JSON payload to POST to a URL.
type WebhookData struct {
	URL     string
	Payload any
	Headers map[string]string
}

// ------------------- Notification interface -------------------

// Notification is the interface every notification must satisfy.
type Notification interface {
	Via() []string
}

type Mailable interface {
	ToMail() MailData
}

type Slackable interface {
	ToSlack() SlackData
}

type Webhookable interface {
	ToWebhook() WebhookData
}

// ------------------- Notifier -------------------

// Notifier sends notifications through a mailer and HTTP hooks.
type Notifier struct {
	mailer   mail.Mailer
	slackURL string
	client   *http.Client
	attempts int
	backoff  time.Duration
	log      *slog.Logger
}

type Option func(*Notifier)

// WithSlack sets the default Slack incoming webhook URL.
func WithSlack(url string) Option {
	return func(n *Notifier) { n.slackURL = url }
}

// WithRetry sets how many times a hook call is attempted when the
// transport fails.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(n *Notifier) { n.attempts, n.backoff = attempts, backoff }
}

// WithHTTPClient replaces the client used for Slack and webhooks.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

func New(m mail.Mailer, opts ...Option) *Notifier {
	n := &Notifier{
		mailer:   m,
		client:   khttp.DefaultClient,
		attempts: 3,
		backoff:  500 * time.Millisecond,
		log:      logger.Component("notification"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send dispatches note through every channel returned by Via. address is
// the mail recipient. All channels are attempted; their errors are joined.
func (n *Notifier) Send(ctx context.Context, address string, note Notification) error {
	var errs []error
	for _, channel := range note.Via() {
		if err := n.dispatch(ctx, address, channel, note); err != nil {
			n.log.Error("channel failed", "channel", channel, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) dispatch(ctx context.Context, address, channel string, note Notification) error {
	switch channel {
	case Mail:
		m, ok := note.(Mailable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Mailable", note)
		}
		return n.sendMail(ctx, address, m.ToMail())

	case Slack:
		s, ok := note.(Slackable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Slackable", note)
		}
		return n.sendSlack(ctx, s.ToSlack())

	case Webhook:
		wh, ok := note.(Webhookable)
		if !ok {
			return fmt.Errorf("notification: %T does not implement Webhookable", note)
		}
		return n.sendWebhook(ctx, wh.ToWebhook())

	default:
		return fmt.Errorf("notification: unknown channel %q", channel)
	}
}

// ------------------- Mail channel -------------------

func (n *Notifier) sendMail(ctx context.Context, address string, d MailData) error {
	to := d.To
	if to == "" {
		to = address
	}
	if to == "" {
		n.log.Info("mail skipped: no recipient", "subject", d.Subject)
		return nil
	}
	return n.mailer.Send(ctx, mail.To(to).Subject(d.Subject).Body(d.Body).Text(d.Text))
}

// ------------------- Slack channel -------------------

type slackPayload struct {
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

func (n *Notifier) sendSlack(ctx context.Context, d SlackData) error {
	url := d.WebhookURL
	if url == "" {
		url = n.slackURL
	}
	if url == "" {
		n.log.Debug("slack skipped: no webhook configured", "text", d.Text)
		return nil
	}
	return n.post(ctx, "slack", url, slackPayload{Text: d.Text, Attachments: d.Attachments}, nil)
}

// ------------------- Webhook channel -------------------

func (n *Notifier) sendWebhook(ctx context.Context, d WebhookData) error {
	if d.URL == "" {
		n.log.Info("webhook skipped: no URL", "payload", d.Payload)
		return nil
	}
	return n.post(ctx, "webhook", d.URL, d.Payload, d.Headers)
}

func (n *Notifier) post(ctx context.Context, channel, url string, payload any, headers map[string]string) error {
	resp, err := khttp.Post(url).
		WithContext(ctx).
		Client(n.client).
		Headers(headers).
		Body(payload).
		Retry(n.attempts, n.backoff).
		Send()
	if err != nil {
		return fmt.Errorf("notification: %s send: %w", channel, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification: %s returned HTTP %d", channel, resp.StatusCode)
	}
	return nil
}
