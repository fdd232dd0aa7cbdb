// Package shared holds the helpers common to every API handler:
// context keys, the response envelope, and request decoding.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/trekora/trek-api/internal/domain"
)

// ContextKey is the private key type for context values owned by the API.
type ContextKey string

// Context keys for request-scoped values.
const (
	// PrincipalContextKey carries the authenticated *domain.User.
	PrincipalContextKey ContextKey = "principal"

	// TraceIDKey carries the request trace ID.
	TraceIDKey ContextKey = "traceID"
)

// traceIDLength is the number of random bytes in a trace ID.
const traceIDLength = 16

// WithPrincipal returns a context carrying the authenticated user.
func WithPrincipal(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, user)
}

// Principal retrieves the authenticated user from the context.
// Returns false when the request did not pass the authentication gate.
func Principal(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(PrincipalContextKey).(*domain.User)
	return user, ok && user != nil
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if absent.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

func newTraceID() string {
	b := make([]byte, traceIDLength)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
