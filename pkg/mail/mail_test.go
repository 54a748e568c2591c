package mail

import (
	"context"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Raw(t *testing.T) {
	m := To("test@example.com").CC("ops@example.com").Subject("Order ORD002").Body("<p>hi</p>")
	raw := string(m.raw(Sender{Address: "orders@meatshop.local", Name: "Meat Shop"}))

	assert.True(t, strings.HasPrefix(raw, "From: Meat Shop <orders@meatshop.local>\r\n"))
	assert.Contains(t, raw, "To: test@example.com\r\n")
	assert.Contains(t, raw, "Cc: ops@example.com\r\n")
	assert.Contains(t, raw, "Content-Type: text/html;")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>hi</p>"))
	assert.Equal(t, []string{"test@example.com", "ops@example.com"}, m.Recipients())
}

func TestMessage_PlainOnly(t *testing.T) {
	raw := string(To("a@b.co").Text("otp 123456").raw(Sender{Address: "x@y.z"}))
	assert.Contains(t, raw, "Content-Type: text/plain;")
	assert.Contains(t, raw, "From: x@y.z\r\n")
}

func TestMessage_Render(t *testing.T) {
	tmpl := template.Must(template.New("t").Parse(`<b>{{.}}</b>`))
	m := To("a@b.co").Render(tmpl, "<script>")
	require.NoError(t, m.Validate())
	assert.Equal(t, "<b>&lt;script&gt;</b>", m.HTML())

	bad := template.Must(template.New("bad").Parse(`{{.Missing.Field}}`))
	m = To("a@b.co").Render(bad, struct{}{})
	assert.Error(t, m.Validate())
}

func TestLogMailer(t *testing.T) {
	l := NewLog(Sender{Address: "orders@meatshop.local"})

	assert.ErrorIs(t, l.Send(context.Background(), To()), ErrNoRecipients)

	require.NoError(t, l.Send(context.Background(), To("a@b.co").Subject("hi").Text("body")))
	sent := l.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi", sent[0].GetSubject())
	assert.Equal(t, "body", sent[0].PlainText())
}
