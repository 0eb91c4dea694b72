package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a backend that did not answer.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks Err as transient for [RetryWithBackoff].
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked by
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const retryAttempts = 3

// retryBaseDelay doubles after each failed attempt.
var retryBaseDelay = time.Second

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// by [Retryable], or has failed retryAttempts times. Waiting between
// attempts stops early when ctx ends.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}
