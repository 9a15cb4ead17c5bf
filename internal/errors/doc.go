// Package errors provides structured, actionable error messages for Viaduct.
//
// Each registered error has a stable code (e.g., "R003") that maps to a
// short message, a detailed explanation, and a documentation URL. Errors
// wrap their cause so callers can use the standard errors.Is/As machinery,
// and Format renders a terminal-friendly report for the CLI.
//
// # Error Categories
//
//   - route: route record compilation and matching
//   - navigation: middleware, metadata, and router wiring
//   - config: viaduct.json loading and validation
//   - render: HTML shell rendering
//   - deploy: site publishing
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("R003").
//	    WithDetailf("record %q places :rest* before %q", rec.Path, seg).
//	    WithSuggestion("Move the catch-all to the end of the path")
package errors
