// Package arbor routes HTTP applications by directory layout.
//
// An application is a directory tree. Each directory becomes a URL path
// segment, a `_name_` directory becomes the path parameter {name}, and
// directories starting with an underscore or a dot are private. A
// directory participates in routing by registering a module.Definition
// under its import path: a Page served at the directory's URL, a Layout
// wrapping everything below it, optional Metadata, an ActionSet of
// sub-routes, an api sub-router and, at the root, error Handlers.
//
// Layouts compose inside-out: the page renders first, then each layout
// from the innermost directory up to the root wraps the result. Any step
// may return a pending value from pkg/task; it is awaited before the next
// step runs. A page or layout can return layout.NoWrap to stop the
// wrapping there.
//
//	app, err := arbor.New("./site")
//	app.Register("app", &module.Definition{Page: home, Layout: shell})
//	handler, err := app.Handler()
//	http.ListenAndServe(":8080", handler)
package arbor
