// Package inject implements the request-scoped dependency resolution that
// page, layout, action and metadata functions rely on.
//
// An Injector holds providers keyed by the type they produce. A Scope is
// created per request and resolves a function's parameters: the request,
// the response writer, the request context, the extracted path parameters,
// and any provider-backed type. Provider functions may themselves declare
// parameters, which are resolved recursively; each provider runs at most
// once per scope. A provider may return a pending result (see pkg/task),
// which is awaited before the value is handed to the consumer.
package inject

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/arbor-web/arbor/pkg/task"
)

// Params holds the path parameters extracted from the matched route,
// keyed by segment name (e.g. "id" for a "{id}" segment).
type Params map[string]string

// Get returns the named parameter or "" when absent.
func (p Params) Get(name string) string { return p[name] }

var (
	contextType        = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType          = reflect.TypeOf((*error)(nil)).Elem()
	requestType        = reflect.TypeOf((*http.Request)(nil))
	responseWriterType = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	paramsType         = reflect.TypeOf(Params(nil))
	scopeType          = reflect.TypeOf((*Scope)(nil))
)

// provider produces values of a single type, either as a constant or by
// calling a function whose own parameters are scope-resolved.
type provider struct {
	value reflect.Value
	fn    reflect.Value
	isFn  bool
}

// Injector holds the registered providers. It is populated at startup and
// read-only afterwards; Scopes created from it share the provider table.
type Injector struct {
	providers map[reflect.Type]provider
}

// New creates an empty Injector.
func New() *Injector {
	return &Injector{providers: make(map[reflect.Type]provider)}
}

// binding pairs a provider function with an explicit target type.
type binding struct {
	target reflect.Type
	fn     reflect.Value
}

// For binds a provider function to an explicit target type. Use it when the
// function's declared return type cannot express the target — most notably
// asynchronous providers, which return a pending result (any / Awaitable)
// that only resolves to the target type when awaited:
//
//	in.Provide(inject.For[*UserService](func() any {
//	    return task.Go(func() (any, error) { return loadService() })
//	}))
func For[T any](fn any) any {
	rv := reflect.ValueOf(fn)
	if !rv.IsValid() || rv.Kind() != reflect.Func {
		panic(fmt.Sprintf("inject: For target must be a function, got %T", fn))
	}
	if rv.Type().NumOut() == 0 || rv.Type().NumOut() > 2 {
		panic(fmt.Sprintf("inject: provider %s must return (T) or (T, error)", rv.Type()))
	}
	return binding{target: reflect.TypeOf((*T)(nil)).Elem(), fn: rv}
}

// Provide registers values or provider functions.
//
// A non-function value is served as a constant for its concrete type.
// A function is registered as a provider for its first return type; it may
// additionally return an error, and its parameters are resolved from the
// scope when it runs. A binding created with For registers its function
// under the explicit target type. Registering a second provider for the
// same type replaces the first.
//
// Provide panics on malformed providers; registration is a startup-time
// programming action, not a request-time one.
func (in *Injector) Provide(values ...any) {
	for _, v := range values {
		if b, ok := v.(binding); ok {
			in.providers[b.target] = provider{fn: b.fn, isFn: true}
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.IsValid() {
			panic("inject: cannot provide untyped nil")
		}
		if rv.Kind() != reflect.Func {
			in.providers[rv.Type()] = provider{value: rv}
			continue
		}

		t := rv.Type()
		if t.NumOut() == 0 || t.NumOut() > 2 {
			panic(fmt.Sprintf("inject: provider %s must return (T) or (T, error)", t))
		}
		if t.NumOut() == 2 && t.Out(1) != errorType {
			panic(fmt.Sprintf("inject: provider %s second return value must be error", t))
		}
		out := t.Out(0)
		if out == errorType {
			panic(fmt.Sprintf("inject: provider %s must produce a non-error value", t))
		}
		in.providers[out] = provider{fn: rv, isFn: true}
	}
}

// NewScope creates a per-request resolution scope. Any argument may be nil
// when the corresponding value is not available (e.g. in tests).
func (in *Injector) NewScope(w http.ResponseWriter, r *http.Request, params Params) *Scope {
	return &Scope{
		injector:  in,
		w:         w,
		r:         r,
		params:    params,
		cache:     make(map[reflect.Type]reflect.Value),
		resolving: make(map[reflect.Type]bool),
	}
}

// Scope resolves dependencies for a single request. It caches provider
// results so a provider shared by several consumers runs once.
//
// A Scope is used by a single request goroutine and is not safe for
// concurrent use.
type Scope struct {
	injector  *Injector
	w         http.ResponseWriter
	r         *http.Request
	params    Params
	cache     map[reflect.Type]reflect.Value
	resolving map[reflect.Type]bool
}

// Context returns the request context, or context.Background outside a
// request.
func (s *Scope) Context() context.Context {
	if s.r != nil {
		return s.r.Context()
	}
	return context.Background()
}

// Request returns the request this scope was created for. May be nil.
func (s *Scope) Request() *http.Request { return s.r }

// Call invokes fn with every parameter resolved from the scope and returns
// its result. Supported return shapes are (), (T), (error) and (T, error).
// The returned value is not awaited; callers that accept pending results
// resolve them with task.Await.
func (s *Scope) Call(fn any) (any, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return nil, fmt.Errorf("inject: cannot call %T, not a function", fn)
	}
	return s.call(v)
}

func (s *Scope) call(v reflect.Value) (any, error) {
	t := v.Type()
	if t.IsVariadic() {
		return nil, fmt.Errorf("inject: variadic function %s not supported", t)
	}

	args := make([]reflect.Value, t.NumIn())
	for i := 0; i < t.NumIn(); i++ {
		arg, err := s.Resolve(t.In(i))
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	return unpack(v.Call(args))
}

// Resolve produces a value of type t from the scope.
func (s *Scope) Resolve(t reflect.Type) (reflect.Value, error) {
	switch t {
	case contextType:
		return reflect.ValueOf(s.Context()), nil
	case requestType:
		if s.r == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(s.r), nil
	case responseWriterType:
		if s.w == nil {
			return reflect.Zero(t), nil
		}
		return reflect.ValueOf(s.w), nil
	case paramsType:
		if s.params == nil {
			return reflect.ValueOf(Params{}), nil
		}
		return reflect.ValueOf(s.params), nil
	case scopeType:
		return reflect.ValueOf(s), nil
	}

	if v, ok := s.cache[t]; ok {
		return v, nil
	}

	p, ok := s.injector.providers[t]
	if !ok {
		return reflect.Value{}, fmt.Errorf("inject: no provider for %s", t)
	}

	if !p.isFn {
		return p.value, nil
	}

	if s.resolving[t] {
		return reflect.Value{}, fmt.Errorf("inject: dependency cycle while resolving %s", t)
	}
	s.resolving[t] = true
	defer delete(s.resolving, t)

	out, err := s.call(p.fn)
	if err != nil {
		return reflect.Value{}, err
	}
	out, err = task.Await(s.Context(), out)
	if err != nil {
		return reflect.Value{}, err
	}

	v, err := toValue(out, t)
	if err != nil {
		return reflect.Value{}, err
	}
	s.cache[t] = v
	return v, nil
}

// unpack converts reflect call results into (value, error).
func unpack(results []reflect.Value) (any, error) {
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if results[0].Type() == errorType {
			return nil, asError(results[0])
		}
		return results[0].Interface(), nil
	case 2:
		if results[1].Type() != errorType {
			return nil, fmt.Errorf("inject: second return value must be error, got %s", results[1].Type())
		}
		return results[0].Interface(), asError(results[1])
	default:
		return nil, fmt.Errorf("inject: too many return values (%d)", len(results))
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

// toValue converts a resolved any into a reflect.Value of type t.
func toValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("inject: provider produced %s, want %s", rv.Type(), t)
}
