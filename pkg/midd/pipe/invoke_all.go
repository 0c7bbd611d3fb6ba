package pipe

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// InvokeAll calls p once per argument set, at most limit at a time
// (unbounded when limit <= 0). Every invocation is independent and runs its
// own handlers in order. Results are in argSets order; the first error is
// returned once all calls have settled.
func InvokeAll[T any](ctx context.Context, p Pipeline[T], limit int, argSets [][]any) ([]T, error) {
	results := make([]T, len(argSets))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, args := range argSets {
		g.Go(func() error {
			v, err := p.Call(ctx, args...)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
