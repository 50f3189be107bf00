package solver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEachCapital runs fn for every capital index on at most workers
// goroutines and returns once all of them have finished.
func forEachCapital(ctx context.Context, workers, n int, fn func(k int)) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k := 0; k < n; k++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(k)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
