// Package timeout implements deadline-bounded execution of cancellable operations.
//
// Every outbound network call on a decision path carries an explicit
// deadline, and the underlying transport must be cancelled when the deadline
// expires. A lingering connection past the logical timeout is a resource
// leak, not a cosmetic issue.
package timeout

import (
	"context"
	"errors"
	"time"
)

// Run executes op under a child context that expires after d.
// The child context is always cancelled on return, aborting any in-flight
// transport the operation opened.
func Run[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return op(ctx)
}

// Race executes op in the background and races it against the deadline.
// Whichever settles first wins; a losing operation keeps its cancelled
// context and its eventual result is discarded.
// Intended for operations that may not promptly honor context cancellation.
func Race[T any](ctx context.Context, d time.Duration, op func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}

	ch := make(chan outcome, 1)
	go func() {
		value, err := op(ctx)
		ch <- outcome{value, err}
	}()

	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Expired reports whether an error was caused by a deadline expiry.
func Expired(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
