package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbor-web/arbor/pkg/router"
)

func docCmd() *cobra.Command {
	var (
		rootDir string
		appDir  string
		title   string
		docVer  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Generate an OpenAPI document for the discovered routes",
		Long: `Generate an OpenAPI 3 document describing the page routes derived
from the application directory and write it as JSON.

Examples:
  arbor doc
  arbor doc --title "My Site" --output openapi.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			routes, err := discoverRoutes(rootDir, appDir)
			if err != nil {
				return err
			}

			doc := router.BuildDoc(router.DocInfo{Title: title, Version: docVer}, routes)
			data, err := doc.Encode()
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Println(string(data))
				return nil
			}
			return os.WriteFile(output, append(data, '\n'), 0o644)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", ".", "Application root directory")
	cmd.Flags().StringVar(&appDir, "app", "app", "Application directory name under the root")
	cmd.Flags().StringVar(&title, "title", "", "Document title")
	cmd.Flags().StringVar(&docVer, "doc-version", "", "Document version")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")

	return cmd
}
