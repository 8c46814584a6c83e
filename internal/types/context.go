package types

import (
	"context"
	"time"
)

// Context Keys
type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Detach returns a context that carries the values of ctx (such as the
// request ID) but is never canceled. Shared fetches triggered by a
// request must outlive that request so later waiters still receive the
// result.
func Detach(ctx context.Context) context.Context {
	return detachedContext{parent: ctx}
}

type detachedContext struct {
	parent context.Context
}

func (d detachedContext) Deadline() (time.Time, bool) { return time.Time{}, false }

func (d detachedContext) Done() <-chan struct{} { return nil }

func (d detachedContext) Err() error { return nil }

func (d detachedContext) Value(key any) any { return d.parent.Value(key) }
