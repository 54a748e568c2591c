package notification_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/meatshop/pkg/mail"
	"github.com/shashiranjanraj/meatshop/pkg/notification"
	"github.com/shashiranjanraj/meatshop/pkg/testkit"
)

const slackURL = "https://hooks.slack.test/services/T000"

type orderPlaced struct {
	via []string
}

func (n orderPlaced) Via() []string { return n.via }

func (orderPlaced) ToMail() notification.MailData {
	return notification.MailData{Subject: "Order ORD002 confirmed", Body: "<p>Thanks</p>", Text: "Thanks"}
}

func (orderPlaced) ToSlack() notification.SlackData {
	return notification.SlackData{Text: "New order ORD002", Attachments: []notification.SlackAttachment{{Color: "good", Title: "₹210"}}}
}

func (orderPlaced) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		URL:     "https://sms.test/send",
		Payload: map[string]string{"to": "9876543210"},
		Headers: map[string]string{"X-Api-Key": "k"},
	}
}

type noSlack struct{}

func (noSlack) Via() []string { return []string{notification.Slack} }

func newNotifier(mt *testkit.MockTransport, opts ...notification.Option) (*notification.Notifier, *mail.LogMailer) {
	mailer := mail.NewLog(mail.Sender{Name: "Meat Shop", Address: "orders@meatshop.test"})
	opts = append(opts, notification.WithHTTPClient(&http.Client{Transport: mt}))
	return notification.New(mailer, opts...), mailer
}

func TestSendEveryChannel(t *testing.T) {
	mt := testkit.NewMockTransport(
		testkit.MockStep{MatchURL: slackURL},
		testkit.MockStep{MatchURL: "https://sms.test/"},
	)
	n, mailer := newNotifier(mt, notification.WithSlack(slackURL))

	note := orderPlaced{via: []string{notification.Mail, notification.Slack, notification.Webhook}}
	require.NoError(t, n.Send(context.Background(), "test@example.com", note))

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []string{"test@example.com"}, sent[0].Recipients())
	assert.Equal(t, "Order ORD002 confirmed", sent[0].GetSubject())

	assert.Empty(t, mt.AssertAllCalled())
	reqs := mt.Requests()
	require.Len(t, reqs, 2)
	assert.JSONEq(t, `{"text":"New order ORD002","attachments":[{"color":"good","title":"₹210"}]}`, reqs[0].Body)
	assert.JSONEq(t, `{"to":"9876543210"}`, reqs[1].Body)
}

func TestUnconfiguredSlackIsSkipped(t *testing.T) {
	mt := testkit.NewMockTransport()
	n, _ := newNotifier(mt)

	require.NoError(t, n.Send(context.Background(), "test@example.com", orderPlaced{via: []string{notification.Slack}}))
	assert.Empty(t, mt.Requests())
}

func TestChannelErrorsAreJoined(t *testing.T) {
	mt := testkit.NewMockTransport(testkit.MockStep{MatchURL: slackURL, StatusCode: http.StatusBadGateway})
	n, mailer := newNotifier(mt, notification.WithSlack(slackURL))

	err := n.Send(context.Background(), "test@example.com", orderPlaced{via: []string{notification.Slack, notification.Mail, "pigeon"}})
	require.Error(t, err)
	assert.ErrorContains(t, err, "HTTP 502")
	assert.ErrorContains(t, err, `unknown channel "pigeon"`)
	assert.Len(t, mailer.Sent(), 1, "mail still goes out when slack fails")

	err = n.Send(context.Background(), "test@example.com", noSlack{})
	assert.ErrorContains(t, err, "does not implement Slackable")
}
