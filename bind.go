package arbor

import (
	"net/http"
	"strings"

	"github.com/arbor-web/arbor/pkg/layout"
	"github.com/arbor-web/arbor/pkg/markup"
	"github.com/arbor-web/arbor/pkg/module"
	"github.com/arbor-web/arbor/pkg/router"
)

// buildNode recursively binds one tree node and its subtree. base is the
// layout chain inherited from the ancestors; the node's own layout is
// combined onto it and passed down to the children, so composition runs
// inside-out from the page up to the root.
func (a *App) buildNode(node *router.Node, base layout.Provider) (router.Mux, error) {
	chain := base

	var def *module.Definition
	if node.Package != nil {
		loaded, err := a.registry.Load(node.Package.ImportPath)
		if err != nil {
			// A broken package degrades to an absent one; siblings and
			// children keep working.
			a.logger.Warn("failed to load package module, treating as absent",
				"package", node.Package.ImportPath, "url", node.URL, "error", err)
		} else {
			def = loaded
		}
	}

	mux, err := a.muxForPackage(node, def)
	if err != nil {
		return nil, err
	}

	if def != nil {
		importPath := node.Package.ImportPath

		if def.Layout != nil {
			bound, err := layout.Bind(def.Layout)
			if err != nil {
				return nil, configErrorf("bind", "layout of %s: %w", importPath, err)
			}
			chain = layout.Combine(base, bound)
		}

		if def.Page != nil {
			h, err := a.pipelineHandler(importPath, def.Page, def.Metadata, chain, nil)
			if err != nil {
				return nil, err
			}
			mux.Handle([]string{http.MethodGet}, "/", h, router.RouteInfo{
				Name:             importPath,
				Tags:             []string{"Page"},
				NoResponseSchema: true,
			})
		}

		if def.HandleSubmit != nil {
			h, err := a.pipelineHandler(importPath, def.HandleSubmit, def.Metadata, chain, nil)
			if err != nil {
				return nil, err
			}
			mux.Handle([]string{http.MethodPost}, "/", h, router.RouteInfo{
				Name:             importPath + ".handle_submit",
				Tags:             []string{"Page", "Submit"},
				NoResponseSchema: true,
			})
		}

		if err := a.bindActions(mux, importPath, def.Actions, chain); err != nil {
			return nil, err
		}
	}

	for _, seg := range node.Segments() {
		child, err := a.buildNode(node.Child(seg), chain)
		if err != nil {
			return nil, err
		}
		mux.Mount(seg, child)
	}

	return mux, nil
}

// bindActions registers every action of a package. Actions that want the
// layout chain or declare metadata run through the page pipeline (with the
// empty chain substituted when wrapping is not requested); the rest are
// registered directly without that overhead.
func (a *App) bindActions(mux router.Mux, importPath string, actions *module.ActionSet, chain layout.Provider) error {
	if actions.Len() == 0 {
		return nil
	}

	for _, path := range actions.Paths() {
		desc, _ := actions.Lookup(path)

		var h http.Handler
		var err error
		if desc.UseLayout || desc.Metadata != nil {
			actionChain := layout.Provider(layout.EmptyProvider)
			if desc.UseLayout {
				actionChain = chain
			}
			h, err = a.pipelineHandler(importPath, desc.Action, desc.Metadata, actionChain, desc.Dependencies)
		} else {
			h = a.directHandler(desc.Action, desc.Dependencies)
		}
		if err != nil {
			return err
		}

		mux.Handle(desc.Methods, path, h, router.RouteInfo{
			Name:             actionRouteName(importPath, desc, path),
			Description:      desc.Description,
			Tags:             desc.Tags,
			Deprecated:       desc.Deprecated,
			NoResponseSchema: true,
		})
	}
	return nil
}

// actionRouteName derives the stable route name of an action.
func actionRouteName(importPath string, desc *module.Descriptor, path string) string {
	name := desc.FuncName
	if name == "" {
		name = strings.TrimPrefix(path, "/")
	}
	return importPath + "." + name
}

// muxForPackage creates the mux a package's routes are registered on. A
// package may bring its own via the api role: a ready router.Mux, or a
// factory taking nothing or the renderer. Any other shape is a fatal
// configuration error.
func (a *App) muxForPackage(node *router.Node, def *module.Definition) (router.Mux, error) {
	if def == nil || def.API == nil {
		return router.NewChiMux(), nil
	}

	importPath := node.Package.ImportPath
	var mux router.Mux
	switch api := def.API.(type) {
	case router.Mux:
		mux = api
	case func() router.Mux:
		mux = api()
	case func(*markup.Renderer) router.Mux:
		mux = api(a.renderer)
	default:
		return nil, configErrorf("bind", "api of %s must be a router.Mux, func() router.Mux or func(*markup.Renderer) router.Mux, got %T", importPath, def.API)
	}
	if mux == nil {
		return nil, configErrorf("bind", "api of %s returned a nil mux", importPath)
	}
	return mux, nil
}
