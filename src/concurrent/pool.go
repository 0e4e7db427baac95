package concurrent

import (
	"context"
	"sync"
)

// DefaultWorkers bounds concurrency when callers pass a non-positive limit.
const DefaultWorkers = 4

// ParallelMap applies fn to every item with at most workers goroutines in
// flight. Results keep the input order. The first error cancels the
// remaining work and is returned together with the partial results.
func ParallelMap[T, R any](ctx context.Context, items []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]R, len(items))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	sem := make(chan struct{}, workers)
	for i, item := range items {
		select {
		case <-ctx.Done():
			fail(ctx.Err())
		case sem <- struct{}{}:
		}
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		wg.Add(1)
		go func(idx int, val T) {
			defer wg.Done()
			defer func() { <-sem }()
			r, err := fn(ctx, val)
			if err != nil {
				fail(err)
				return
			}
			results[idx] = r
		}(i, item)
	}

	wg.Wait()
	return results, firstErr
}
