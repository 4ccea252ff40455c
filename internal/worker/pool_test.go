package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsJobs(t *testing.T) {
	pool := NewPool(2, 8, time.Second, nil)
	pool.Start(context.Background())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		ok := pool.Submit("count", func(context.Context) error {
			ran.Add(1)
			return nil
		})
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
	}
	pool.Submit("fails", func(context.Context) error { return errors.New("boom") })
	pool.Submit("panics", func(context.Context) error { panic("boom") })
	pool.Stop()

	if ran.Load() != 5 {
		t.Fatalf("ran = %d, want 5", ran.Load())
	}
	if pool.Submit("late", func(context.Context) error { return nil }) {
		t.Fatal("submit after stop should be rejected")
	}
}

func TestPoolRejectsWhenFull(t *testing.T) {
	pool := NewPool(1, 1, 0, nil)
	if !pool.Submit("first", func(context.Context) error { return nil }) {
		t.Fatal("first submit should fit")
	}
	if pool.Submit("second", func(context.Context) error { return nil }) {
		t.Fatal("second submit should be rejected before workers start")
	}
	pool.Start(context.Background())
	pool.Stop()
}

func TestPoolJobTimeout(t *testing.T) {
	pool := NewPool(1, 1, 10*time.Millisecond, nil)
	pool.Start(context.Background())

	done := make(chan error, 1)
	pool.Submit("slow", func(ctx context.Context) error {
		<-ctx.Done()
		done <- ctx.Err()
		return ctx.Err()
	})
	pool.Stop()

	if err := <-done; !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}
