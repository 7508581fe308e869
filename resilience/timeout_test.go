package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecuteWithTimeout_Completes(t *testing.T) {
	err := ExecuteWithTimeout(context.Background(), time.Second, func(context.Context) error {
		return nil
	})
	if err != nil {
		t.Errorf("ExecuteWithTimeout = %v, want nil", err)
	}
}

func TestExecuteWithTimeout_DeadlineOverrun(t *testing.T) {
	err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("ExecuteWithTimeout = %v, want ErrTimeout", err)
	}
}

func TestExecuteWithTimeout_NonPositiveRunsUnbounded(t *testing.T) {
	opErr := errors.New("op failed")
	err := ExecuteWithTimeout(context.Background(), 0, func(context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("ExecuteWithTimeout = %v, want the operation error", err)
	}
}

func TestExecuteWithTimeout_OuterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExecuteWithTimeout(ctx, time.Minute, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteWithTimeout = %v, want context.Canceled", err)
	}
}

func TestExecuteWithTimeout_ErrorPassThrough(t *testing.T) {
	opErr := errors.New("op failed")
	err := ExecuteWithTimeout(context.Background(), time.Second, func(context.Context) error {
		return opErr
	})
	if !errors.Is(err, opErr) {
		t.Errorf("ExecuteWithTimeout = %v, want the operation error", err)
	}
}
