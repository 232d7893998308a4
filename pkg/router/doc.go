// Package router turns an application directory tree into a routable URL
// tree.
//
// Directories are URL segments. A directory becomes part of the
// application as soon as it contains one of the role files:
//
//	page.go     the content served at the directory's URL
//	layout.go   the layout wrapping this directory and everything below it
//	actions.go  supplementary handlers mounted next to the page
//	api.go      a plain sub-router mounted at the directory's URL
//	error.go    error handlers (application root only)
//
// Dynamic segments are directories whose name is wrapped in underscores:
//
//	app/users/_id_/page.go  →  GET /users/{id}
//
// Directory names that start with an underscore but do not end with one
// (and dot-directories) are private: they and everything below them are
// left out of the route tree.
//
// The package provides the Scanner that performs discovery, the prefix
// tree the binder walks, the Mux contract with its chi adapter, a route
// table/document generator, and a development-time directory watcher.
package router
