package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBulkhead_LimitsConcurrency(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	release := make(chan struct{})
	started := make(chan struct{}, 2)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Execute(ctx, func(context.Context) error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}
	<-started
	<-started

	// Both slots held; the third call must be rejected immediately.
	err := b.Execute(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Execute over capacity = %v, want ErrBulkheadFull", err)
	}

	close(release)
	wg.Wait()

	if err := b.Execute(ctx, func(context.Context) error { return nil }); err != nil {
		t.Errorf("Execute after release = %v, want nil", err)
	}
}

func TestBulkhead_MaxWait(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		done <- b.Acquire(ctx)
	}()

	// The waiter should get the slot once it frees up within MaxWait.
	time.Sleep(20 * time.Millisecond)
	b.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("waiting Acquire = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiting Acquire never completed")
	}
}

func TestBulkhead_WaitTimesOut(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	err := b.Acquire(ctx)
	if !errors.Is(err, ErrBulkheadFull) {
		t.Errorf("Acquire past MaxWait = %v, want ErrBulkheadFull", err)
	}
}

func TestBulkhead_ContextCancellation(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Minute})

	if err := b.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Acquire(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("cancelled Acquire = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled Acquire never returned")
	}
}

func TestBulkhead_Metrics(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})
	ctx := context.Background()

	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	if err := b.Acquire(ctx); err != nil {
		t.Fatal(err)
	}
	_ = b.Acquire(ctx) // rejected

	m := b.Metrics()
	if m.Active != 2 || m.MaxActive != 2 || m.Available != 0 {
		t.Errorf("Metrics = %+v, want 2 active of 2", m)
	}
	if m.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", m.Rejected)
	}

	b.Release()
	b.Release()
	if m := b.Metrics(); m.Active != 0 || m.Available != 2 {
		t.Errorf("Metrics after release = %+v", m)
	}
}

func TestBulkhead_ErrorsPassThrough(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})
	opErr := errors.New("op failed")

	err := b.Execute(context.Background(), func(context.Context) error { return opErr })
	if !errors.Is(err, opErr) {
		t.Errorf("Execute = %v, want the operation error", err)
	}
	if m := b.Metrics(); m.Active != 0 {
		t.Errorf("slot leaked after error: %+v", m)
	}
}
