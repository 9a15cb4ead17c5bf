package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/viaduct-dev/viaduct/internal/config"
	"github.com/viaduct-dev/viaduct/internal/dev"
)

func routesCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the compiled route table",
		Long: `Query a running dev server for its compiled route table and print it.

Start the dev server first (viaduct dev), then run this command from
the same project.

Examples:
  viaduct routes
  viaduct routes --url=http://localhost:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(serverURL)
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "Dev server URL (default from viaduct.json)")

	return cmd
}

// routeRow mirrors the dev server's route table endpoint.
type routeRow struct {
	ID       string `json:"id"`
	Pattern  string `json:"pattern"`
	Kind     string `json:"kind"`
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

func runRoutes(serverURL string) error {
	if serverURL == "" {
		cfg, err := config.LoadFromWorkingDir()
		if err != nil {
			return err
		}
		serverURL = cfg.URL()
	}

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Get(serverURL + dev.RoutesEndpoint)
	if err != nil {
		errorMsg("Could not reach the dev server at %s", serverURL)
		info("Start it with: viaduct dev")
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("dev server returned %s for %s", res.Status, dev.RoutesEndpoint)
	}

	var rows []routeRow
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return fmt.Errorf("decode route table: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  PATTERN\tKIND\tNAME\tTITLE\tREDIRECT")
	for _, row := range rows {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
			row.Pattern, row.Kind, row.Name, row.Title, row.Redirect)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	info("%d routes", len(rows))
	return nil
}
