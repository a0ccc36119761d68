package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote cache backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// maxAttempts bounds RetryWithBackoff.
const maxAttempts = 3

// RetryDelay is the wait before the first retry; it doubles afterwards.
var RetryDelay = 500 * time.Millisecond

type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient for RetryWithBackoff. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable.
func IsRetryable(err error) bool {
	var re retryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn until it succeeds, fails with an error not marked
// by Retryable, or has failed maxAttempts times.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := RetryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == maxAttempts {
			return err
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
