package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogMailer_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer("noreply@jobboard.local", zap.New(core))

	err := m.Send(context.Background(), Message{To: "jane@example.com", Subject: "Password Recovery", Body: "link"})
	require.NoError(t, err)

	entries := logs.FilterMessage("Email sent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "jane@example.com", entries[0].ContextMap()["to"])
	assert.Equal(t, "noreply@jobboard.local", entries[0].ContextMap()["from"])
}

func TestLogMailer_RequiresRecipient(t *testing.T) {
	m := NewLogMailer("noreply@jobboard.local", zap.NewNop())
	assert.Error(t, m.Send(context.Background(), Message{Subject: "x"}))
}
