package pnlhttp

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var reportGroup singleflight.Group

// buildShared deduplicates concurrent identical report builds. The winning
// call runs on the first caller's context; waiters still honour their own
// cancellation.
func buildShared[T any](ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	resultChan := reportGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return zero, res.Err
		}
		value, ok := res.Val.(T)
		if !ok {
			return zero, nil
		}
		return value, nil
	}
}
