package middleware

import (
	"context"
)

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeySession ctxKey = "session"
	ctxKeyHTMX    ctxKey = "htmx.info"
)

// WithSession stores session data in the context.
func WithSession(ctx context.Context, s *SessionData) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext returns the session attached by the Session middleware,
// or an empty session when none is present.
func SessionFromContext(ctx context.Context) *SessionData {
	if v, ok := ctx.Value(ctxKeySession).(*SessionData); ok && v != nil {
		return v
	}
	return &SessionData{}
}

// WithHTMX stores htmx request metadata in the context.
func WithHTMX(ctx context.Context, info HTMXInfo) context.Context {
	return context.WithValue(ctx, ctxKeyHTMX, info)
}

// HTMXInfoFromContext retrieves htmx metadata; returns zero value if absent.
func HTMXInfoFromContext(ctx context.Context) HTMXInfo {
	v, _ := ctx.Value(ctxKeyHTMX).(HTMXInfo)
	return v
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	return HTMXInfoFromContext(ctx).IsHTMX
}
