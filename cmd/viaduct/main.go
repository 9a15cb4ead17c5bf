package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦┬┌─┐┌┬┐┬ ┬┌─┐┌┬┐
  ╚╗╔╝│├─┤ │││ ││   │
   ╚╝ ┴┴ ┴─┴┘└─┘└─┘ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "viaduct",
		Short: "The Go navigation engine for component-driven UIs",
		Long: `Viaduct is a client-side router and navigation engine written in Go.

Declare nested route records, and Viaduct matches paths against them,
runs navigation middleware, resolves redirects, and renders the matched
component chain into nested outlets. Features include:

  • Nested routes with params, wildcards and catch-alls
  • Middleware with redirect budgets and loop detection
  • Lazy component loading with retry on failure
  • Dev server with live reload and component hot swap
  • Static builds deployable straight to S3`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		devCmd(),
		buildCmd(),
		deployCmd(),
		routesCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Viaduct ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Printf("\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}

// formatBytes formats bytes as a human-readable string.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
