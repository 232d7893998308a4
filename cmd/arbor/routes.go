package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arbor-web/arbor/pkg/router"
)

func routesCmd() *cobra.Command {
	var (
		rootDir string
		appDir  string
		watch   bool
	)

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the routes derived from the application directory",
		Long: `Discover the application packages under the root directory and
print the URL each one serves.

With --watch the table is reprinted whenever a routing-relevant file
or directory changes.

Examples:
  arbor routes
  arbor routes --root ./site --app pages
  arbor routes --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := printRoutes(rootDir, appDir); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return watchRoutes(rootDir, appDir)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", ".", "Application root directory")
	cmd.Flags().StringVar(&appDir, "app", "app", "Application directory name under the root")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reprint on file changes")

	return cmd
}

// discoverRoutes scans the tree and synthesizes the page route table:
// one GET route per discovered package, named after its import path.
func discoverRoutes(rootDir, appDir string) ([]router.Route, error) {
	packages, err := router.NewScanner(rootDir, appDir).Scan()
	if err != nil {
		return nil, err
	}
	if _, err := router.BuildTree(packages); err != nil {
		return nil, err
	}

	routes := make([]router.Route, 0, len(packages))
	for _, pkg := range packages {
		routes = append(routes, router.Route{
			Methods: []string{http.MethodGet},
			Pattern: pkg.URL,
			Info: router.RouteInfo{
				Name:             pkg.ImportPath,
				Tags:             []string{"Page"},
				NoResponseSchema: true,
			},
		})
	}
	return routes, nil
}

func printRoutes(rootDir, appDir string) error {
	routes, err := discoverRoutes(rootDir, appDir)
	if err != nil {
		return err
	}
	fmt.Print(router.FormatTable(routes))
	return nil
}

func watchRoutes(rootDir, appDir string) error {
	watcher, err := router.NewWatcher(filepath.Join(rootDir, appDir), func() {
		fmt.Println()
		if err := printRoutes(rootDir, appDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
	})
	if err != nil {
		return err
	}
	watcher.Start()
	defer watcher.Stop()

	fmt.Println("\nWatching for changes. Press Ctrl+C to stop.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return nil
}
