package resilience

import (
	"context"
	"errors"
	"time"
)

// ExecuteWithTimeout runs op with a wall-clock limit. The operation receives
// a context that is cancelled at the deadline; a deadline overrun is
// reported as ErrTimeout. A non-positive timeout runs op unbounded.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	if timeout <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
