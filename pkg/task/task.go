// Package task provides the pending-result abstraction used by the route
// binder. A page, layout, action or metadata resolver may either return its
// value immediately or return an Awaitable handle; Await resolves both
// variants uniformly so callers never need to know which one they got.
package task

import "context"

// Awaitable is a result that may still be in flight.
type Awaitable interface {
	// Await blocks until the result is available or ctx is done.
	Await(ctx context.Context) (any, error)
}

// Pending is a handle to a value computed in a background goroutine.
// It implements Awaitable and is safe to await from multiple goroutines.
type Pending struct {
	done  chan struct{}
	value any
	err   error
}

// Go starts fn in a new goroutine and returns a Pending handle for its
// result. The goroutine runs to completion regardless of whether the
// handle is ever awaited.
func Go(fn func() (any, error)) *Pending {
	p := &Pending{done: make(chan struct{})}
	go func() {
		defer close(p.done)
		p.value, p.err = fn()
	}()
	return p
}

// Resolved returns a Pending that already holds the given value.
func Resolved(value any) *Pending {
	p := &Pending{done: make(chan struct{}), value: value}
	close(p.done)
	return p
}

// Await implements Awaitable.
func (p *Pending) Await(ctx context.Context) (any, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await resolves v: if it is an Awaitable the call blocks for the result,
// otherwise v is returned as-is. Awaiting is repeated in case an awaited
// result is itself an Awaitable.
func Await(ctx context.Context, v any) (any, error) {
	for {
		a, ok := v.(Awaitable)
		if !ok {
			return v, nil
		}
		var err error
		v, err = a.Await(ctx)
		if err != nil {
			return nil, err
		}
	}
}
