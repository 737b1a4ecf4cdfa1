// Package lazy provides a load-once value whose first load is shared by every
// concurrent caller.
package lazy

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader produces the value. It runs at most once to completion per Value.
type Loader[T any] func(ctx context.Context) (T, error)

// Value memoizes the outcome of a Loader, including a failed outcome.
type Value[T any] struct {
	load  Loader[T]
	group singleflight.Group

	mu   sync.RWMutex
	done bool
	val  T
	err  error
}

// New returns a Value backed by load.
func New[T any](load Loader[T]) *Value[T] {
	return &Value[T]{load: load}
}

// Get returns the memoized result, starting the load if needed. Callers that
// arrive while a load is in flight wait on that same load. Cancelling ctx
// stops this caller's wait only; the shared load keeps running detached from
// the caller's cancellation.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	if val, err, ok := v.peek(); ok {
		return val, err
	}

	ch := v.group.DoChan("load", func() (any, error) {
		if val, err, ok := v.peek(); ok {
			return val, err
		}
		val, err := v.load(context.WithoutCancel(ctx))
		v.mu.Lock()
		v.val, v.err, v.done = val, err, true
		v.mu.Unlock()
		return val, err
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		val, _ := res.Val.(T)
		return val, res.Err
	}
}

// Loaded reports whether a load has completed.
func (v *Value[T]) Loaded() bool {
	_, _, ok := v.peek()
	return ok
}

func (v *Value[T]) peek() (T, error, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.val, v.err, v.done
}
