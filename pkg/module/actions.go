package module

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"sort"
	"strings"
)

// Descriptor is one registered action: the handler itself plus everything
// route registration needs to know about it.
type Descriptor struct {
	// Action is the handler function. Its parameters are resolved per
	// request like a page's.
	Action any

	// FuncName is the bare name of the handler function; the route name is
	// derived from it together with the owning package's import path.
	FuncName string

	// Methods are the HTTP methods the action answers to.
	Methods []string

	// UseLayout wraps the action's return value in the package's layout
	// chain, the same way a page is wrapped.
	UseLayout bool

	// Metadata is an optional static Mapping or resolver function.
	Metadata any

	// Dependencies are extra functions resolved before the action runs,
	// in registration order. Their return values are discarded; an error
	// from one stops the request before the action is invoked. Guard
	// checks (authentication and the like) go here.
	Dependencies []any

	Tags        []string
	Description string
	Deprecated  bool

	path string
}

// ActionSet collects the actions of one package, keyed by route path. The
// set is mutated only while the application is being declared; Freeze ends
// that phase before route binding starts.
type ActionSet struct {
	descriptors map[string]*Descriptor
	frozen      bool
}

// NewActionSet creates an empty action set.
func NewActionSet() *ActionSet {
	return &ActionSet{descriptors: make(map[string]*Descriptor)}
}

// ActionOption configures a single action registration.
type ActionOption func(*Descriptor)

// WithPath sets an explicit route path instead of /<function name>.
func WithPath(path string) ActionOption {
	return func(d *Descriptor) { d.path = path }
}

// WithLayout wraps the action's return value in the containing package's
// layout chain, the same as a page.
func WithLayout() ActionOption {
	return func(d *Descriptor) { d.UseLayout = true }
}

// WithDependencies adds guard functions resolved before the action runs.
// Their values are discarded; returning an error denies the request.
func WithDependencies(fns ...any) ActionOption {
	for _, fn := range fns {
		if fn == nil || reflect.ValueOf(fn).Kind() != reflect.Func {
			panic(fmt.Sprintf("module: action dependency must be a function, got %T", fn))
		}
	}
	return func(d *Descriptor) { d.Dependencies = append(d.Dependencies, fns...) }
}

// WithMetadataattaches metadata (a Mapping or a resolver function) to the
// action's route.
func WithMetadata(metadata any) ActionOption {
	return func(d *Descriptor) { d.Metadata = metadata }
}

// WithTags sets the route's documentation tags. Without it the route is
// tagged "Action".
func WithTags(tags ...string) ActionOption {
	return func(d *Descriptor) { d.Tags = tags }
}

// WithDescription sets the route's documentation text.
func WithDescription(desc string) ActionOption {
	return func(d *Descriptor) { d.Description = desc }
}

// Deprecated marks the route as deprecated in documentation.
func Deprecated() ActionOption {
	return func(d *Descriptor) { d.Deprecated = true }
}

// Get registers an action answering HTTP GET.
func (s *ActionSet) Get(fn any, opts ...ActionOption) *ActionSet {
	return s.Handle([]string{http.MethodGet}, fn, opts...)
}

// Post registers an action answering HTTP POST.
func (s *ActionSet) Post(fn any, opts ...ActionOption) *ActionSet {
	return s.Handle([]string{http.MethodPost}, fn, opts...)
}

// Put registers an action answering HTTP PUT.
func (s *ActionSet) Put(fn any, opts ...ActionOption) *ActionSet {
	return s.Handle([]string{http.MethodPut}, fn, opts...)
}

// Patch registers an action answering HTTP PATCH.
func (s *ActionSet) Patch(fn any, opts ...ActionOption) *ActionSet {
	return s.Handle([]string{http.MethodPatch}, fn, opts...)
}

// Delete registers an action answering HTTP DELETE.
func (s *ActionSet) Delete(fn any, opts ...ActionOption) *ActionSet {
	return s.Handle([]string{http.MethodDelete}, fn, opts...)
}

// Handle registers an action for an arbitrary method set. The route path
// defaults to /<function name>; registering the same function again under
// a different path (or method set) is allowed and both registrations
// invoke the same handler. Registering after Freeze, with no methods, with
// a value that is not a function, or at an already-taken path is a
// programming error.
func (s *ActionSet) Handle(methods []string, fn any, opts ...ActionOption) *ActionSet {
	if s.frozen {
		panic("module: action set is frozen")
	}
	if len(methods) == 0 {
		panic("module: action needs at least one HTTP method")
	}
	if fn == nil || reflect.ValueOf(fn).Kind() != reflect.Func {
		panic(fmt.Sprintf("module: action must be a function, got %T", fn))
	}

	d := &Descriptor{
		Action:   fn,
		FuncName: funcName(fn),
		Methods:  append([]string(nil), methods...),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.Tags == nil {
		d.Tags = []string{"Action"}
	}

	path := d.path
	if path == "" {
		if d.FuncName == "" {
			panic("module: anonymous action needs an explicit path (WithPath)")
		}
		path = "/" + d.FuncName
	}
	if _, taken := s.descriptors[path]; taken {
		panic(fmt.Sprintf("module: action path %s is already registered", path))
	}
	s.descriptors[path] = d
	return s
}

// Lookup returns the descriptor registered at path.
func (s *ActionSet) Lookup(path string) (*Descriptor, bool) {
	d, ok := s.descriptors[path]
	return d, ok
}

// Paths returns the registered paths in sorted order.
func (s *ActionSet) Paths() []string {
	paths := make([]string, 0, len(s.descriptors))
	for p := range s.descriptors {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of registered actions.
func (s *ActionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.descriptors)
}

// Freeze ends the registration phase.
func (s *ActionSet) Freeze() {
	s.frozen = true
}

// funcName extracts the bare function name of fn, or "" for anonymous
// functions.
func funcName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return ""
	}
	name := f.Name()
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	// Method values carry a -fm suffix.
	name = strings.TrimSuffix(name, "-fm")
	// funcN names belong to anonymous functions; they are not stable
	// route material.
	if allDigits(name) || (strings.HasPrefix(name, "func") && allDigits(name[4:])) {
		return ""
	}
	return name
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
