// Package retry paces the reconnect supervisor: it re-runs an
// operation with a fixed pause between failures until the operation
// succeeds, reports a permanent failure, or its context ends.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// PermanentError marks a failure that another attempt cannot fix, such
// as a rejected password.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so that Do returns it at once.  A nil err stays
// nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Backoff retries an operation with a constant delay and no attempt
// ceiling.  The first attempt runs immediately.
type Backoff struct {
	// Delay is the pause after each failed attempt.  Zero or less
	// means one second.
	Delay time.Duration

	// OnRetry, when set, is called after each failed attempt with the
	// wait that precedes the next one.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Constant returns a Backoff that waits delay between attempts.
func Constant(delay time.Duration) *Backoff {
	return &Backoff{Delay: delay}
}

// Do calls fn until it returns nil.  Attempts are numbered from 1.  A
// Permanent error is unwrapped and returned without retrying; a
// cancelled ctx ends the loop with ctx's error.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	wait := b.Delay
	if wait <= 0 {
		wait = time.Second
	}
	t := time.NewTimer(wait)
	t.Stop()
	defer t.Stop()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		var pe *PermanentError
		if errors.As(err, &pe) {
			return pe.Err
		}

		if b.OnRetry != nil {
			b.OnRetry(attempt, err, wait)
		}

		t.Reset(wait)
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-t.C:
		}
	}
}
