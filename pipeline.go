package arbor

import (
	"fmt"
	"net/http"

	"github.com/arbor-web/arbor/pkg/inject"
	"github.com/arbor-web/arbor/pkg/layout"
	"github.com/arbor-web/arbor/pkg/module"
	"github.com/arbor-web/arbor/pkg/router"
	"github.com/arbor-web/arbor/pkg/task"
)

// pipelineHandler builds the request handler for a page-like route.
//
// Per request the order is fixed: the page dependency first (most likely
// to fail or short-circuit with a terminal response), metadata second
// (lightweight), the layout chain last (least likely to fail). Each step's
// result is awaited before the next, so synchronous and pending results
// mix freely. Metadata shape problems are a configuration error caught at
// bind time, not on first request.
func (a *App) pipelineHandler(importPath string, page any, metadata any, chain layout.Provider, deps []any) (http.Handler, error) {
	resolver, err := module.MetadataResolver(metadata)
	if err != nil {
		return nil, configErrorf("bind", "metadata of %s: %w", importPath, err)
	}
	if chain == nil {
		chain = layout.EmptyProvider
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := a.injector.NewScope(w, r, router.PathParams(r))
		ctx := r.Context()

		if err := runDependencies(scope, deps); err != nil {
			a.respondError(w, r, err)
			return
		}

		v, err := scope.Call(page)
		if err == nil {
			v, err = task.Await(ctx, v)
		}
		if err != nil {
			a.respondError(w, r, err)
			return
		}
		if resp, ok := v.(*Response); ok {
			resp.Write(w)
			return
		}

		meta, err := a.resolveMetadata(scope, resolver)
		if err != nil {
			a.respondError(w, r, err)
			return
		}

		if b, ok := v.(layout.Bare); ok {
			// The page opted out of wrapping; the layout chain never runs.
			v = b.Content
		} else {
			wrap, err := chain(scope)
			if err != nil {
				a.respondError(w, r, err)
				return
			}
			v, err = wrap(ctx, v)
			if err == nil {
				v, err = task.Await(ctx, v)
			}
			if err != nil {
				a.respondError(w, r, err)
				return
			}
			// The outermost layout may itself opt out.
			if b, ok := v.(layout.Bare); ok {
				v = b.Content
			}
		}

		a.writeRendered(w, r, v, meta)
	}), nil
}

// runDependencies resolves guard dependencies in order, discarding their
// values. The first error aborts the request before the handler runs.
func runDependencies(scope *inject.Scope, deps []any) error {
	for _, dep := range deps {
		v, err := scope.Call(dep)
		if err == nil {
			_, err = task.Await(scope.Context(), v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// directHandler builds the handler for an action without layout or
// metadata: resolve, await, respond.
func (a *App) directHandler(action any, deps []any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := a.injector.NewScope(w, r, router.PathParams(r))

		if err := runDependencies(scope, deps); err != nil {
			a.respondError(w, r, err)
			return
		}

		v, err := scope.Call(action)
		if err == nil {
			v, err = task.Await(r.Context(), v)
		}
		if err != nil {
			a.respondError(w, r, err)
			return
		}
		if resp, ok := v.(*Response); ok {
			resp.Write(w)
			return
		}
		a.writeRendered(w, r, v, nil)
	})
}

// resolveMetadata runs the metadata resolver in the request scope and
// normalizes its result to a Mapping.
func (a *App) resolveMetadata(scope *inject.Scope, resolver any) (module.Mapping, error) {
	v, err := scope.Call(resolver)
	if err == nil {
		v, err = task.Await(scope.Context(), v)
	}
	if err != nil {
		return nil, err
	}

	switch m := v.(type) {
	case nil:
		return nil, nil
	case module.Mapping:
		return m, nil
	case map[string]any:
		return module.Mapping(m), nil
	default:
		return nil, fmt.Errorf("arbor: metadata resolver returned %T, want a Mapping", v)
	}
}

// writeRendered renders v with metadata installed and writes the result.
func (a *App) writeRendered(w http.ResponseWriter, r *http.Request, v any, meta module.Mapping) {
	body, err := a.renderer.Render(r, v, meta)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", a.renderer.ContentType())
	w.Write(body)
}
