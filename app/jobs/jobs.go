// Package jobs holds the queued notifications: order confirmations and
// status updates, password-reset and welcome mails, and OTP delivery.
//
// Services fire domain events on the bus; Listen turns them into queued
// jobs and Register teaches a queue worker how to run them.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/shashiranjanraj/meatshop/app/models"
	"github.com/shashiranjanraj/meatshop/app/repositories"
	"github.com/shashiranjanraj/meatshop/pkg/notification"
	"github.com/shashiranjanraj/meatshop/pkg/queue"
)

// Job names.
const (
	OrderConfirmationJob = "mail.order_confirmation"
	OrderStatusJob       = "mail.order_status"
	PasswordResetJob     = "mail.password_reset"
	WelcomeJob           = "mail.welcome"
	OTPJob               = "sms.otp"
)

// Deps are the collaborators a worker injects into decoded jobs.
type Deps struct {
	Notifier      *notification.Notifier
	Users         repositories.UserRepository
	DeliveryFee   int
	ResetURL      string // password reset page; the token is appended as ?token=
	OTPWebhookURL string // SMS gateway; empty logs the code instead
}

// Register adds every job type to q.
func Register(q *queue.Manager, d Deps) {
	q.Register(OrderConfirmationJob, func() queue.Job { return &OrderConfirmation{deps: d} })
	q.Register(OrderStatusJob, func() queue.Job { return &OrderStatus{deps: d} })
	q.Register(PasswordResetJob, func() queue.Job { return &PasswordReset{deps: d} })
	q.Register(WelcomeJob, func() queue.Job { return &Welcome{deps: d} })
	q.Register(OTPJob, func() queue.Job { return &OTP{deps: d} })
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("<p>%s</p>", template.HTMLEscapeString(err.Error()))
	}
	return buf.String()
}

// ─── Order confirmation ───────────────────────────────────────────────────────

type OrderConfirmation struct {
	Order models.Order `json:"order"`
	Email string       `json:"email"`

	deps Deps
}

func (j *OrderConfirmation) Name() string { return OrderConfirmationJob }

func (j *OrderConfirmation) Handle(ctx context.Context) error {
	return j.deps.Notifier.Send(ctx, j.Email, j)
}

func (j *OrderConfirmation) Via() []string {
	return []string{notification.Mail, notification.Slack}
}

func (j *OrderConfirmation) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Your order %s is confirmed", j.Order.ID),
		Body: render(orderConfirmationTmpl, map[string]any{
			"Order":       j.Order,
			"DeliveryFee": j.deps.DeliveryFee,
		}),
		Text: fmt.Sprintf("Order %s placed. Total ₹%d, %s.", j.Order.ID, j.Order.Total, j.Order.PaymentMethod),
	}
}

func (j *OrderConfirmation) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New order %s: ₹%d (%s)", j.Order.ID, j.Order.Total, j.Order.PaymentMethod),
		Attachments: []notification.SlackAttachment{{
			Color:  "good",
			Title:  j.Order.DeliveryAddress.FullName,
			Text:   fmt.Sprintf("%s, %s %s", j.Order.DeliveryAddress.City, j.Order.DeliveryAddress.State, j.Order.DeliveryAddress.Pincode),
			Footer: fmt.Sprintf("%d item(s)", len(j.Order.Items)),
		}},
	}
}

// ─── Order status ─────────────────────────────────────────────────────────────

// OrderStatus tells the customer their order moved. The address is looked
// up when the job runs.
type OrderStatus struct {
	Order models.Order `json:"order"`

	deps Deps
	user models.User
}

var statusMessages = map[models.OrderStatus]string{
	models.StatusProcessing: "We are preparing your order.",
	models.StatusShipped:    "Your order is on its way.",
	models.StatusDelivered:  "Your order has been delivered. Enjoy!",
	models.StatusCancelled:  "Your order has been cancelled.",
}

func (j *OrderStatus) Name() string { return OrderStatusJob }

func (j *OrderStatus) Handle(ctx context.Context) error {
	u, err := j.deps.Users.FindByID(ctx, j.Order.UserID)
	if err != nil {
		return fmt.Errorf("jobs: order status %s: %w", j.Order.ID, err)
	}
	j.user = u
	return j.deps.Notifier.Send(ctx, u.Email, j)
}

func (j *OrderStatus) Via() []string { return []string{notification.Mail} }

func (j *OrderStatus) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Order %s: %s", j.Order.ID, j.Order.Status),
		Body: render(orderStatusTmpl, map[string]any{
			"Name":    j.user.Name,
			"Order":   j.Order,
			"Message": statusMessages[j.Order.Status],
		}),
	}
}

// ─── Password reset ───────────────────────────────────────────────────────────

type PasswordReset struct {
	UserName string `json:"name"`
	Email    string `json:"email"`
	Token    string `json:"token"`

	deps Deps
}

func (j *PasswordReset) Name() string { return PasswordResetJob }

func (j *PasswordReset) Handle(ctx context.Context) error {
	return j.deps.Notifier.Send(ctx, j.Email, j)
}

func (j *PasswordReset) Via() []string { return []string{notification.Mail} }

func (j *PasswordReset) link() string {
	return j.deps.ResetURL + "?token=" + url.QueryEscape(j.Token)
}

func (j *PasswordReset) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Reset your Meat Shop password",
		Body:    render(passwordResetTmpl, map[string]any{"Name": j.UserName, "Link": j.link()}),
		Text:    "Reset your password: " + j.link(),
	}
}

// ─── Welcome ──────────────────────────────────────────────────────────────────

type Welcome struct {
	UserName string `json:"name"`
	Email    string `json:"email"`

	deps Deps
}

func (j *Welcome) Name() string { return WelcomeJob }

func (j *Welcome) Handle(ctx context.Context) error {
	return j.deps.Notifier.Send(ctx, j.Email, j)
}

func (j *Welcome) Via() []string { return []string{notification.Mail} }

func (j *Welcome) ToMail() notification.MailData {
	return notification.MailData{
		Subject: "Welcome to Meat Shop",
		Body:    render(welcomeTmpl, map[string]any{"Name": j.UserName}),
	}
}

// ─── OTP ──────────────────────────────────────────────────────────────────────

// OTP posts the code to the SMS gateway webhook.
type OTP struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`

	deps Deps
}

func (j *OTP) Name() string { return OTPJob }

func (j *OTP) Handle(ctx context.Context) error {
	return j.deps.Notifier.Send(ctx, "", j)
}

func (j *OTP) Via() []string { return []string{notification.Webhook} }

func (j *OTP) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		URL: j.deps.OTPWebhookURL,
		Payload: map[string]string{
			"to":      j.Phone,
			"message": fmt.Sprintf("Your Meat Shop verification code is %s", j.Code),
		},
	}
}
