// Package conc provides the bounded fan-out used by the researcher stage.
package conc

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Map runs handler over items with at most limit concurrent invocations and
// returns results aligned to input order. Workers pull work through a shared
// cursor, so dispatch order is sequential while completion order is not. The
// first handler error fails the whole call; workers stop picking up new items
// once the group context is cancelled, but in-flight handlers run to
// completion.
func Map[T, R any](ctx context.Context, items []T, limit int, handler func(ctx context.Context, item T, index int) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	results := make([]R, len(items))
	var cursor atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < limit; w++ {
		g.Go(func() error {
			for {
				i := int(cursor.Add(1)) - 1
				if i >= len(items) {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				r, err := handler(ctx, items[i], i)
				if err != nil {
					return err
				}
				results[i] = r
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
