// Package parallel fans per-column work out to a bounded set of goroutines.
//
// Results keep input order. Small inputs run inline on the calling
// goroutine; DefaultWorkers is runtime.NumCPU().
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MinItems is the smallest input Map fans out; below it Map runs inline
const MinItems = 4

// DefaultWorkers returns the worker count used when a caller passes <= 0
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Map applies fn to every item with at most workers goroutines and returns
// the results in input order. The first error cancels ctx for the
// remaining items and is returned.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, int, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	results := make([]R, len(items))
	if len(items) < MinItems || workers == 1 {
		for i, item := range items {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			r, err := fn(ctx, i, item)
			if err != nil {
				return nil, err
			}
			results[i] = r
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := fn(gctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Each is Map for functions without a result
func Each[T any](ctx context.Context, workers int, items []T, fn func(context.Context, int, T) error) error {
	_, err := Map(ctx, workers, items, func(ctx context.Context, i int, item T) (struct{}, error) {
		return struct{}{}, fn(ctx, i, item)
	})
	return err
}
