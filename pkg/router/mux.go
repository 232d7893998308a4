package router

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/arbor-web/arbor/pkg/inject"
)

// RouteInfo carries per-route documentation metadata.
type RouteInfo struct {
	// Name is the stable route identifier, e.g. "app/users.handle_submit".
	Name string

	// Description is free-form human-readable text.
	Description string

	Tags       []string
	Deprecated bool

	// NoResponseSchema marks routes whose responses are rendered markup
	// rather than structured data; doc generation emits no response schema
	// for them.
	NoResponseSchema bool
}

// Route is one registered route in the collected route table.
type Route struct {
	Methods []string
	Pattern string
	Info    RouteInfo
}

// Mux is the host-router contract the binder registers against: method
// routing with per-route metadata, nested mounting, and middleware. The
// production implementation is ChiMux; tests may substitute their own.
type Mux interface {
	http.Handler

	// Handle registers a handler at pattern for the given methods. An
	// empty method set means GET.
	Handle(methods []string, pattern string, h http.Handler, info RouteInfo)

	// Mount attaches a child mux under the /-prefixed segment.
	Mount(segment string, child Mux)

	// Use appends middleware applied to every route of this mux and its
	// mounted children.
	Use(mw ...func(http.Handler) http.Handler)

	// Routes returns the full route table, with mounted children's
	// patterns prefixed by their mount segment.
	Routes() []Route
}

// ChiMux adapts github.com/go-chi/chi to the Mux contract. The {name}
// pattern tokens derived from _name_ directories are chi's native dynamic
// segment syntax, so patterns pass through unmodified.
type ChiMux struct {
	mux    chi.Router
	routes []Route
	mounts []mountEntry
}

type mountEntry struct {
	prefix string
	child  Mux
}

// NewChiMux creates an empty chi-backed mux.
func NewChiMux() *ChiMux {
	return &ChiMux{mux: chi.NewRouter()}
}

func (m *ChiMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

func (m *ChiMux) Handle(methods []string, pattern string, h http.Handler, info RouteInfo) {
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}
	for _, method := range methods {
		m.mux.Method(method, pattern, h)
	}
	recorded := append([]string(nil), methods...)
	sort.Strings(recorded)
	m.routes = append(m.routes, Route{Methods: recorded, Pattern: pattern, Info: info})
}

func (m *ChiMux) Mount(segment string, child Mux) {
	m.mux.Mount(segment, child)
	m.mounts = append(m.mounts, mountEntry{prefix: segment, child: child})
}

func (m *ChiMux) Use(mw ...func(http.Handler) http.Handler) {
	m.mux.Use(mw...)
}

func (m *ChiMux) Routes() []Route {
	out := append([]Route(nil), m.routes...)
	for _, mt := range m.mounts {
		for _, r := range mt.child.Routes() {
			r.Pattern = joinPattern(mt.prefix, r.Pattern)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pattern != out[j].Pattern {
			return out[i].Pattern < out[j].Pattern
		}
		return out[i].Info.Name < out[j].Info.Name
	})
	return out
}

// joinPattern prefixes a child route pattern with its mount segment.
func joinPattern(prefix, pattern string) string {
	if prefix == "/" {
		return pattern
	}
	if pattern == "/" {
		return prefix
	}
	return prefix + pattern
}

// PathParams extracts the matched dynamic segments of the current request
// into an inject.Params map.
func PathParams(r *http.Request) inject.Params {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(inject.Params, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}

// RoutePattern returns the chi route pattern the request matched. It is
// only complete once routing has happened, so middleware should read it
// after calling the next handler.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
