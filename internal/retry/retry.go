// Package retry provides bounded retries with exponential backoff for
// transient upstream failures.
//
// The budget is an explicit value threaded through each call, never
// shared mutable state: two concurrent calls with the same policy do not
// observe each other's attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy is an explicit retry budget.
type Policy struct {
	// MaxAttempts is the total number of attempts (first try included).
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles for
	// every attempt after that.
	BaseDelay time.Duration
}

// DefaultPolicy retries three times starting at one second.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second}

// Transient marks an error as retryable. Errors not wrapped with
// Transient terminate the retry loop immediately.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

type transientError struct {
	err error
}

func (e *transientError) Error() string {
	return e.err.Error()
}

func (e *transientError) Unwrap() error {
	return e.err
}

// IsTransient reports whether an error was marked retryable.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Do runs fn up to the policy's attempt budget, backing off
// exponentially between attempts. Only errors marked with Transient are
// retried; the last error is returned once the budget is exhausted.
// Context cancellation aborts the backoff wait.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}

		lastErr = err
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
