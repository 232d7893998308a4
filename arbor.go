package arbor

import (
	"log/slog"
	"net/http"

	"github.com/arbor-web/arbor/pkg/inject"
	"github.com/arbor-web/arbor/pkg/layout"
	"github.com/arbor-web/arbor/pkg/markup"
	"github.com/arbor-web/arbor/pkg/module"
	"github.com/arbor-web/arbor/pkg/router"
)

// App builds and serves a file-system routed application: it discovers the
// application packages, composes their layouts, and binds pages, submit
// handlers, actions and api sub-routers into one handler.
type App struct {
	config     AppConfig
	logger     *slog.Logger
	renderer   *markup.Renderer
	injector   *inject.Injector
	registry   *module.Registry
	middleware []func(http.Handler) http.Handler

	mux           router.Mux
	errorHandlers map[int]ErrorHandler
}

// Option configures an App.
type Option func(*App)

// WithAppDir sets the application directory name under the root. Default
// is "app"; pass "" when the application lives directly in the root.
func WithAppDir(name string) Option {
	return func(a *App) { a.config.AppDirName = name }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithRenderer sets the rendering collaborator.
func WithRenderer(r *markup.Renderer) Option {
	return func(a *App) { a.renderer = r }
}

// WithInjector sets the dependency injector shared by all handlers.
func WithInjector(in *inject.Injector) Option {
	return func(a *App) { a.injector = in }
}

// WithMiddleware appends HTTP middleware applied to every route.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) { a.middleware = append(a.middleware, mw...) }
}

// New creates an App for the application under rootDir. The application
// directory (rootDir/app by default, see WithAppDir) must exist.
func New(rootDir string, opts ...Option) (*App, error) {
	a := &App{
		config:   DefaultAppConfig(rootDir, "app"),
		logger:   slog.Default(),
		renderer: markup.NewRenderer(),
		injector: inject.New(),
		registry: module.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	// Options may change the app dir name.
	a.config = DefaultAppConfig(a.config.RootDir, a.config.AppDirName)

	if err := a.config.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the resolved application configuration.
func (a *App) Config() AppConfig {
	return a.config
}

// Injector returns the app's injector for provider registration.
func (a *App) Injector() *inject.Injector {
	return a.injector
}

// Registry returns the module registry packages register against.
func (a *App) Registry() *module.Registry {
	return a.registry
}

// Register adds a package definition under its import path. Convenience
// for Registry().Register.
func (a *App) Register(importPath string, def *module.Definition) *App {
	a.registry.Register(importPath, def)
	return a
}

// RegisterLoader adds a lazy package definition under its import path.
func (a *App) RegisterLoader(importPath string, load module.Loader) *App {
	a.registry.RegisterLoader(importPath, load)
	return a
}

// Build discovers the application packages, builds the URL tree, freezes
// the registry and binds every route. It must be called once, after all
// registrations; the resulting mux is immutable.
func (a *App) Build() (router.Mux, error) {
	scanner := router.NewScanner(a.config.RootDir, a.config.AppDirName)
	packages, err := scanner.Scan()
	if err != nil {
		return nil, configErrorf("scan", "%w", err)
	}

	tree, err := router.BuildTree(packages)
	if err != nil {
		return nil, configErrorf("tree", "%w", err)
	}

	a.registry.Freeze()

	// Error handlers come from the root package, before any route needs
	// them.
	if tree.Package != nil {
		def, err := a.registry.Load(tree.Package.ImportPath)
		if err != nil {
			a.logger.Warn("failed to load root package module", "package", tree.Package.ImportPath, "error", err)
		} else if def != nil && def.Handlers != nil {
			handlers, err := buildErrorHandlers(def.Handlers, a.renderer)
			if err != nil {
				return nil, err
			}
			a.errorHandlers = handlers
		}
	}

	mux, err := a.buildNode(tree, layout.EmptyProvider)
	if err != nil {
		return nil, err
	}

	if len(a.middleware) > 0 {
		// Middleware must be attached before any route, so it wraps the
		// fully built tree from a fresh host mux.
		host := router.NewChiMux()
		host.Use(a.middleware...)
		host.Mount("/", mux)
		mux = host
	}

	a.mux = mux
	a.logger.Info("application built",
		"packages", len(packages),
		"routes", len(mux.Routes()),
	)
	return mux, nil
}

// Handler returns the built handler, building on first use.
func (a *App) Handler() (http.Handler, error) {
	if a.mux == nil {
		if _, err := a.Build(); err != nil {
			return nil, err
		}
	}
	return a.mux, nil
}

// Routes returns the route table of the built application.
func (a *App) Routes() []router.Route {
	if a.mux == nil {
		return nil
	}
	return a.mux.Routes()
}
