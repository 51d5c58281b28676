// Package context holds small helpers around the standard context package.
package context

import (
	"context"
	"time"
)

// WithOptionalTimeout returns a context bounded by timeout, or the parent
// unchanged with a no-op cancel when timeout is not positive.
func WithOptionalTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}

// Detach returns a context that keeps the values of parent but is never
// canceled by it. Used when work must outlive the request that queued it.
func Detach(parent context.Context) context.Context {
	return context.WithoutCancel(parent)
}

// IsCanceled returns true if the context has been canceled
func IsCanceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// IsTimedOut returns true if the context was canceled due to a timeout
func IsTimedOut(ctx context.Context) bool {
	return ctx.Err() == context.DeadlineExceeded
}
