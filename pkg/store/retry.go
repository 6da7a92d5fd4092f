package store

import (
	"context"
	"errors"
	"time"
)

// Connection attempts for the network backends.
const (
	connectAttempts = 3
	connectDelay    = 250 * time.Millisecond
)

// transientError marks a failure worth retrying, such as a refused
// connection while a server is starting.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// retry runs fn up to attempts times, doubling delay after each transient
// failure. Other errors are returned at once; after the last attempt the
// cause of the final transient failure is returned.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(context.Context) error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = te.err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
