package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err so RetryWithBackoff tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff controls RetryWithBackoff.
type Backoff struct {
	Attempts int
	Delay    time.Duration // first delay, doubled after each attempt
}

// DefaultBackoff is three attempts starting at one second.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// RetryWithBackoff runs fn with DefaultBackoff.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The returned error is unwrapped from RetryableError.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	attempts := max(1, b.Attempts)
	delay := b.Delay
	var last error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		last = err
		if !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			delay *= 2
		}
	}
	var re *RetryableError
	if errors.As(last, &re) {
		return re.Err
	}
	return last
}
