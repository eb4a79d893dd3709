package audit

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/lightfoot-dev/idbroker/internal/obs"
)

type ctxKey string

const (
	requestIDKey ctxKey = "audit_request_id"
	userIDKey    ctxKey = "audit_user_id"
)

// Default audit event names.
const (
	EventLogin         = "auth.login"
	EventRefresh       = "auth.refresh"
	EventRefreshReplay = "auth.refresh_replay"
	EventLogout        = "auth.logout"
)

var log = func() *zap.Logger { return obs.Logger() }

// SetLogger overrides the audit sink. Intended for tests.
func SetLogger(l *zap.Logger) {
	log = func() *zap.Logger { return l }
}

// WithRequestID attaches the request identifier to the context for audit logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID attaches the acting user to the context for audit logging.
func WithUserID(ctx context.Context, userID int64) context.Context {
	if userID == 0 {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func userIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

// LogEvent writes an audit log entry enriched with request and user context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}

	zfields := []zap.Field{
		zap.String("type", "audit"),
		zap.String("event", event),
	}
	if rid := requestIDFromContext(ctx); rid != "" {
		zfields = append(zfields, zap.String("request_id", rid))
	}
	if userID, ok := userIDFromContext(ctx); ok {
		zfields = append(zfields, zap.Int64("user_id", userID))
	}
	if len(fields) > 0 {
		zfields = append(zfields, zap.Any("fields", fields))
	} else {
		zfields = append(zfields, zap.Any("fields", map[string]any{}))
	}

	log().Info(event, zfields...)
	return nil
}
