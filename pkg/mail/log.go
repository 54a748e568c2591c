package mail

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shashiranjanraj/meatshop/pkg/logger"
)

// LogMailer writes messages to the log instead of sending them and keeps
// the last few in memory. It is the default driver in development.
type LogMailer struct {
	from Sender
	log  *slog.Logger

	mu   sync.Mutex
	sent []*Message
}

const logMailerKeep = 50

func NewLog(from Sender) *LogMailer {
	return &LogMailer{from: from, log: logger.Component("mail")}
}

func (l *LogMailer) Send(_ context.Context, m *Message) error {
	if err := m.Validate(); err != nil {
		return err
	}

	l.log.Info("mail",
		"from", l.from.String(),
		"to", m.Recipients(),
		"subject", m.subject,
	)
	l.log.Debug("mail body", "body", m.PlainText())

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sent = append(l.sent, m)
	if len(l.sent) > logMailerKeep {
		l.sent = l.sent[len(l.sent)-logMailerKeep:]
	}
	return nil
}

// Sent returns the retained messages, oldest first.
func (l *LogMailer) Sent() []*Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Message(nil), l.sent...)
}
