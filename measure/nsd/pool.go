package nsd

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn(0..n-1) on at most workers goroutines. Each index is run by
// exactly one task. The first error is returned after all started tasks have
// finished; tasks not yet started are skipped once a task has failed.
func forEach(workers, n int, fn func(i int) error) error {
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(workers, 1))

	for i := range n {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return fn(i)
		})
	}

	return g.Wait()
}
