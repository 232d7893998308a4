// Package module describes what an application package contributes to the
// route tree: its page, submit handler, layout, metadata, actions, api
// sub-router and error handlers.
//
// A Go directory is one package, so all roles of a directory are declared
// in a single Definition and registered against a Registry under the
// package's import path (which equals its directory path). Discovery finds
// the directories; the registry supplies their contents.
package module

import (
	"fmt"
	"sort"
)

// Definition declares the roles of one application package. Every field is
// optional; the zero Definition contributes nothing.
type Definition struct {
	// Page is the handler producing the content served at the package URL.
	// Its parameters are resolved per request; it may return a renderable
	// value, a pending result, a bare-content marker or a terminal
	// response.
	Page any

	// HandleSubmit is the POST counterpart to Page, registered at the same
	// URL and run through the same pipeline.
	HandleSubmit any

	// Layout wraps this package's content and everything below it. It must
	// accept the content as its first parameter.
	Layout any

	// Metadata is either a static Mapping or a resolver function producing
	// one per request.
	Metadata any

	// Actions holds the package's supplementary handlers.
	Actions *ActionSet

	// API is a pre-built sub-router for the package URL: a router.Mux, a
	// func() Mux, or a func(*markup.Renderer) Mux.
	API any

	// Handlers maps HTTP status codes to error handlers. Only honored on
	// the application root package.
	Handlers any
}

// Loader produces a package's Definition on demand. A failing loader is
// the recoverable counterpart of an import error: the package is treated
// as absent and binding continues.
type Loader func() (*Definition, error)

// Registry holds the registered package definitions. It is populated at
// startup, frozen before route binding, and read-only afterwards.
type Registry struct {
	loaders map[string]Loader
	loaded  map[string]*Definition
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]Loader),
		loaded:  make(map[string]*Definition),
	}
}

// Register adds a package definition under its import path. Registering
// twice for the same path, or after Freeze, is a programming error.
func (r *Registry) Register(importPath string, def *Definition) *Registry {
	return r.RegisterLoader(importPath, func() (*Definition, error) { return def, nil })
}

// RegisterLoader adds a lazy package definition under its import path.
func (r *Registry) RegisterLoader(importPath string, load Loader) *Registry {
	if r.frozen {
		panic(fmt.Sprintf("module: registry is frozen, cannot register %s", importPath))
	}
	if _, ok := r.loaders[importPath]; ok {
		panic(fmt.Sprintf("module: %s is already registered", importPath))
	}
	r.loaders[importPath] = load
	return r
}

// Load returns the definition registered for importPath, (nil, nil) when
// nothing is registered, or the loader's error. Each loader runs at most
// once; every Load for the same path returns the same *Definition, so the
// action set frozen by Freeze is the one that gets bound.
func (r *Registry) Load(importPath string) (*Definition, error) {
	if def, ok := r.loaded[importPath]; ok {
		return def, nil
	}
	load, ok := r.loaders[importPath]
	if !ok {
		return nil, nil
	}
	def, err := load()
	if err != nil {
		return nil, fmt.Errorf("module: loading %s: %w", importPath, err)
	}
	r.loaded[importPath] = def
	return def, nil
}

// Paths returns the registered import paths in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.loaders))
	for p := range r.loaders {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Freeze ends the registration phase. It also freezes the action sets of
// every definition that loads successfully.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	r.frozen = true
	for path := range r.loaders {
		if def, err := r.Load(path); err == nil && def != nil && def.Actions != nil {
			def.Actions.Freeze()
		}
	}
}
