// Package layout composes page content into nested layouts.
//
// A layout is an ordinary function that receives the content produced by an
// inner page or layout and returns the wrapped result. Layouts are chained
// from the root of the route tree down to the page: the page renders first
// and each enclosing layout wraps the result of the one inside it.
package layout

import (
	"context"
	"fmt"
	"reflect"

	"github.com/arbor-web/arbor/pkg/inject"
	"github.com/arbor-web/arbor/pkg/task"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Func wraps already-produced content in a layout. Implementations may
// return the wrapped content directly or a task.Awaitable that resolves
// to it.
type Func func(ctx context.Context, content any) (any, error)

// Empty is the identity layout. It returns the received content unchanged.
func Empty(_ context.Context, content any) (any, error) {
	return content, nil
}

// Provider resolves a layout Func once per request from the given scope.
// Resolving up front lets a layout declare request-scoped dependencies that
// are injected a single time, no matter how often the Func runs.
type Provider func(s *inject.Scope) (Func, error)

// EmptyProvider resolves to the Empty layout.
func EmptyProvider(_ *inject.Scope) (Func, error) {
	return Empty, nil
}

// Bare marks content that must not be wrapped in any enclosing layout.
// Pages, submit handlers and layouts may return it to opt out of the
// layouts above them; the innermost Bare in a chain wins. A Bare value
// must never reach the renderer itself.
type Bare struct {
	Content any
}

// NoWrap wraps content in a Bare marker.
func NoWrap(content any) Bare {
	return Bare{Content: content}
}

// Combine nests inner inside outer and returns the combined provider.
// The combined Func runs the inner layout first, awaits its result, and
// feeds it to the outer layout. If the inner layout returns a Bare marker
// the outer layout is skipped and the marker's content is returned as-is.
//
// Combine(a, nil) and Combine(nil, a) are both a, so route tree levels
// without a layout of their own cost nothing.
func Combine(outer, inner Provider) Provider {
	if inner == nil {
		return outer
	}
	if outer == nil {
		return inner
	}
	return func(s *inject.Scope) (Func, error) {
		outerFn, err := outer(s)
		if err != nil {
			return nil, err
		}
		innerFn, err := inner(s)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, content any) (any, error) {
			v, err := innerFn(ctx, content)
			if err != nil {
				return nil, err
			}
			v, err = task.Await(ctx, v)
			if err != nil {
				return nil, err
			}
			if b, ok := v.(Bare); ok {
				return b.Content, nil
			}
			v, err = outerFn(ctx, v)
			if err != nil {
				return nil, err
			}
			return task.Await(ctx, v)
		}, nil
	}
}

// Bind adapts a user-declared layout function into a Provider.
//
// The function's first parameter receives the content being wrapped; any
// further parameters are resolved from the request scope when the provider
// runs. It may return (T) or (T, error), and the returned value may be a
// task.Awaitable. A function without parameters cannot receive content and
// is rejected.
func Bind(fn any) (Provider, error) {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		return nil, fmt.Errorf("layout: %T is not a function", fn)
	}
	t := rv.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("layout: %s must not be variadic", t)
	}
	if t.NumIn() == 0 {
		return nil, fmt.Errorf("layout: %s must accept the content as its first parameter", t)
	}
	if t.NumOut() == 0 || t.NumOut() > 2 {
		return nil, fmt.Errorf("layout: %s must return (T) or (T, error)", t)
	}
	if t.NumOut() == 2 && t.Out(1) != errorType {
		return nil, fmt.Errorf("layout: %s second return value must be error", t)
	}

	contentType := t.In(0)
	return func(s *inject.Scope) (Func, error) {
		// Resolve the dependency parameters once; the content slot is
		// filled per call.
		args := make([]reflect.Value, t.NumIn())
		for i := 1; i < t.NumIn(); i++ {
			v, err := s.Resolve(t.In(i))
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return func(_ context.Context, content any) (any, error) {
			call := make([]reflect.Value, len(args))
			copy(call, args)
			call[0] = valueOrZero(content, contentType)
			return unpack(rv.Call(call))
		}, nil
	}, nil
}

func valueOrZero(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t)
	}
	return reflect.Zero(t)
}

func unpack(results []reflect.Value) (any, error) {
	if len(results) == 1 {
		return results[0].Interface(), nil
	}
	var err error
	if !results[1].IsNil() {
		err = results[1].Interface().(error)
	}
	return results[0].Interface(), err
}
