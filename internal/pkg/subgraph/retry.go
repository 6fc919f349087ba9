package subgraph

import (
	"context"
	"errors"
	"strings"
	"time"
)

// transientError marks network/HTTP level failures so the retry policy can
// tell them apart from terminal GraphQL errors.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// IsRetryable reports whether an attempt should be retried: transport
// failures and transient indexer infrastructure errors only. Malformed
// queries and schema errors fail immediately.
func IsRetryable(err error) bool {
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "indexer") || strings.Contains(msg, "timeout")
}

// RetryPolicy is a bounded exponential backoff consumed by Do, decoupled
// from the GraphQL specifics.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	BackoffFactor int
	IsRetryable   func(error) bool
}

// DefaultRetryPolicy retries transient errors up to MaxRetries with the
// delay doubling each attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   MaxRetries,
		InitialDelay:  InitialRetryDelay,
		BackoffFactor: 2,
		IsRetryable:   IsRetryable,
	}
}

// delayBefore returns the backoff delay preceding retry attempt k
// (1-indexed): InitialDelay * BackoffFactor^(k-1).
func (p RetryPolicy) delayBefore(attempt int) time.Duration {
	d := p.InitialDelay
	for i := 1; i < attempt; i++ {
		d *= time.Duration(p.BackoffFactor)
	}
	return d
}

// Do runs op until it succeeds, a terminal error occurs, attempts run out or
// the context is cancelled.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if p.IsRetryable != nil && !p.IsRetryable(err) {
			return err
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delayBefore(attempt)):
		}
	}
	return err
}
