package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogEvent(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = WithUserID(ctx, 42)

	require.NoError(t, LogEvent(ctx, EventLogin, map[string]any{"provider": "keycloak_local"}))

	entries := recorded.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "audit", fields["type"])
	assert.Equal(t, EventLogin, fields["event"])
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, int64(42), fields["user_id"])
	assert.Equal(t, map[string]any{"provider": "keycloak_local"}, fields["fields"])
}

func TestLogEventRequiresName(t *testing.T) {
	core, _ := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))

	assert.Error(t, LogEvent(context.Background(), "   ", nil))
}

func TestLogEventWithoutContext(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))

	require.NoError(t, LogEvent(context.Background(), EventLogout, nil))

	entries := recorded.All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "request_id")
	assert.NotContains(t, fields, "user_id")
	assert.Equal(t, map[string]any{}, fields["fields"])
}
