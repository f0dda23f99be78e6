// Package mailer sends transactional email.
package mailer

//go:generate mockgen -source=mailer.go -destination=../mocks/mailer_mock.go -package=mocks

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	from   string
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(from string, logger *zap.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

var _ Mailer = (*LogMailer)(nil)

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mailer: recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("Email sent",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
