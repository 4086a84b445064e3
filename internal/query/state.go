package query

import (
	"context"
	"fmt"
)

// State is a typed Result.
type State[T any] struct {
	Status Status
	Data   T
	Err    error
}

func (s State[T]) Pending() bool { return s.Status == StatusPending }
func (s State[T]) Failed() bool  { return s.Status == StatusFailure }
func (s State[T]) Loaded() bool  { return s.Status == StatusSuccess }

// Typed converts an untyped Result.
func Typed[T any](res Result) State[T] {
	st := State[T]{Status: res.Status, Err: res.Err}
	if res.Status != StatusSuccess {
		return st
	}
	v, ok := res.Value.(T)
	if !ok {
		return State[T]{Status: StatusFailure, Err: fmt.Errorf("query: unexpected value %T", res.Value)}
	}
	st.Data = v
	return st
}

// Start makes sure key is being fetched and returns its typed state.
func Start[T any](c *Cache, key Key, fetch func(ctx context.Context) (T, error)) State[T] {
	return Typed[T](c.Ensure(key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}))
}

// Load starts key if needed and waits for it until ctx is done.
func Load[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) State[T] {
	if st := Start(c, key, fetch); !st.Pending() {
		return st
	}
	return Typed[T](c.Wait(ctx, key))
}
