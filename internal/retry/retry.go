// Package retry provides a typed exponential-backoff retrier used by the
// client gateway (C9) to retry transient sync failures without discarding
// already-applied events. Every retried attempt is logged and audited
// through internal/log with the identity of the operation being retried,
// the same way the relay server audits inbound requests.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	metalog "github.com/meta-secret/meta-secret/internal/log"
)

// Retrier handles retry operations with backoff.
type Retrier interface {
	RetryWithBackoff(ctx context.Context, op func() error) error
}

// TypedRetrier provides type-safe retry operations over a base Retrier.
type TypedRetrier[T any] struct {
	retrier Retrier
}

// NewTypedRetrier creates a new TypedRetrier with the given base Retrier.
func NewTypedRetrier[T any](r Retrier) *TypedRetrier[T] {
	return &TypedRetrier[T]{retrier: r}
}

// RetryWithBackoff executes a typed operation with backoff.
func (r *TypedRetrier[T]) RetryWithBackoff(
	ctx context.Context,
	op func() (T, error),
) (T, error) {
	var result T
	err := r.retrier.RetryWithBackoff(ctx, func() error {
		var err error
		result, err = op()
		return err
	})
	return result, err
}

// ExponentialRetrier implements Retrier using exponential backoff. name
// identifies the operation being retried (e.g. "gateway-sync"); it is
// carried through every retry-notify log line and audit entry so a
// relay-side or device-side operator can tell which long-lived activity
// is struggling without correlating by call stack.
type ExponentialRetrier struct {
	name       string
	maxElapsed time.Duration
}

// NewExponentialRetrier creates a new ExponentialRetrier. maxElapsed of
// zero means retry indefinitely (bounded only by ctx cancellation).
func NewExponentialRetrier(name string, maxElapsed time.Duration) *ExponentialRetrier {
	return &ExponentialRetrier{name: name, maxElapsed: maxElapsed}
}

// RetryWithBackoff implements the Retrier interface. Each failed attempt
// is logged through the shared slog singleton and recorded as a fallback
// audit entry, mirroring how internal/net audits inbound relay requests.
func (r *ExponentialRetrier) RetryWithBackoff(
	ctx context.Context,
	operation func() error,
) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.maxElapsed

	totalDuration := time.Duration(0)
	return backoff.RetryNotify(
		operation,
		backoff.WithContext(b, ctx),
		func(err error, wait time.Duration) {
			totalDuration += wait
			metalog.Log().Warn("retrying after transient failure",
				"operation", r.name, "err", err.Error(),
				"wait", wait.String(), "totalElapsed", totalDuration.String())
			metalog.Audit(metalog.AuditEntry{
				TrailID:   uuid.NewString(),
				Timestamp: time.Now(),
				Action:    metalog.AuditFallback,
				Resource:  r.name,
				State:     metalog.AuditErrored,
				Err:       err.Error(),
				Duration:  totalDuration,
			})
		},
	)
}
