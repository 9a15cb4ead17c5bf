package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/viaduct-dev/viaduct/internal/config"
)

func devCmd() *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Run the project's main package with the development server enabled.

The project's entry point is expected to construct a dev.Server around
its router when VIADUCT_DEV is set, which serves the application shell
with live reload and component hot swap.

Examples:
  viaduct dev
  viaduct dev --port=8080
  viaduct dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from viaduct.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from viaduct.json)")

	return cmd
}

func runDev(port int, host string) error {
	if _, err := exec.LookPath("go"); err != nil {
		errorMsg("Go is not installed or not in PATH")
		info("Install Go from https://go.dev/dl/")
		return err
	}

	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Apply command-line overrides.
	if port > 0 {
		cfg.Port = port
	}
	if host != "" {
		cfg.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()
	info("Serving on %s", cfg.URL())
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
	}()

	run := exec.CommandContext(ctx, "go", "run", ".")
	run.Dir = cfg.Dir()
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	run.Env = append(os.Environ(),
		"VIADUCT_DEV=1",
		"VIADUCT_HOST="+cfg.Host,
		"VIADUCT_PORT="+strconv.Itoa(cfg.Port),
	)

	if err := run.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
