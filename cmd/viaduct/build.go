package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viaduct-dev/viaduct/internal/build"
	"github.com/viaduct-dev/viaduct/internal/config"
	"github.com/viaduct-dev/viaduct/pkg/render"
	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

func buildCmd() *cobra.Command {
	var (
		output string
		clean  bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the static site",
		Long: `Build the application into a deployable static site.

This command:
  • Renders the HTML shell to index.html
  • Copies public assets with content-hash cache busting
  • Bundles the browser bootstrap script
  • Generates an asset manifest

Examples:
  viaduct build
  viaduct build --output=dist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output, clean)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from viaduct.json)")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean output directory before build")

	return cmd
}

func runBuild(output string, clean bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides.
	if output != "" {
		cfg.Build.Output = output
	}

	fmt.Println("  Building static site...")
	fmt.Println()

	builder := build.New(cfg, build.Options{
		Shell: projectShell(cfg),
		OnProgress: func(step string) {
			info(step)
		},
	})

	if clean {
		info("Cleaning output directory...")
		if err := builder.Clean(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	success("Build complete in %s", result.Duration.Round(1000000))
	fmt.Println()
	fmt.Println("  Output:")
	fmt.Printf("    %s/\n", cfg.Build.Output)
	fmt.Printf("    ├── index.html\n")
	fmt.Printf("    ├── assets/          (%d hashed)\n", len(result.Manifest))
	fmt.Printf("    ├── _viaduct/client.js\n")
	fmt.Printf("    └── manifest.json\n")
	fmt.Println()
	info("%d files, %s", result.Files, formatBytes(result.Bytes))
	fmt.Println()

	return nil
}

// projectShell builds the default shell for a project: an application
// mount point plus a stylesheet link for every top-level CSS file in the
// public directory. The builder rewrites those links to their hashed
// output paths.
func projectShell(cfg *config.Config) render.Shell {
	shell := render.Shell{
		Title: cfg.Name,
		Body:  vdom.Div(vdom.ID("app")),
	}

	entries, err := os.ReadDir(cfg.PublicPath())
	if err != nil {
		return shell
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".css") {
			continue
		}
		shell.StyleSheets = append(shell.StyleSheets, "/"+filepath.ToSlash(entry.Name()))
	}
	return shell
}
