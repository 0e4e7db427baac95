package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelMapKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out, err := ParallelMap(context.Background(), items, 3, func(_ context.Context, v int) (int, error) {
		return v * v, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range items {
		if out[i] != v*v {
			t.Fatalf("index %d: got %d want %d", i, out[i], v*v)
		}
	}
}

func TestParallelMapBoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	items := make([]int, 32)
	_, err := ParallelMap(context.Background(), items, 2, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&inFlight, -1)
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak > 2 {
		t.Fatalf("expected at most 2 workers, saw %d", peak)
	}
}

func TestParallelMapReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ParallelMap(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestParallelMapEmpty(t *testing.T) {
	out, err := ParallelMap(context.Background(), []string(nil), 4, func(_ context.Context, s string) (string, error) {
		return s, nil
	})
	if out != nil || err != nil {
		t.Fatalf("expected nil, nil for empty input")
	}
}

func TestParallelMapCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The scheduler may pick either select case, so repeat to hit both.
	for range 200 {
		var calls atomic.Int32
		_, err := ParallelMap(ctx, []int{1, 2, 3}, 1, func(_ context.Context, v int) (int, error) {
			calls.Add(1)
			return v, nil
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if calls.Load() != 0 {
			t.Fatalf("no work should start on a cancelled context, ran %d", calls.Load())
		}
	}
}
