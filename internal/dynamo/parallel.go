package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelFor splits [0, n) into contiguous chunks of at least minChunk items
// and runs fn on each chunk concurrently. The first error cancels ctx for the
// remaining chunks and is returned.
func ParallelFor(ctx context.Context, n, minChunk int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if minChunk < 1 {
		minChunk = 1
	}
	workers := runtime.GOMAXPROCS(0)
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		return fn(ctx, 0, n)
	}

	chunkSize := (n + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		s, e := start, end
		g.Go(func() error {
			return fn(ctx, s, e)
		})
	}
	return g.Wait()
}
