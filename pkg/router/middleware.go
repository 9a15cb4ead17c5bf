package router

import (
	"context"
	"net/url"
	"strings"

	"github.com/viaduct-dev/viaduct/pkg/route"
)

// RouteData is a read-only snapshot of one end of a navigation.
type RouteData struct {
	// Name is the leaf route's name, if it has one.
	Name string

	// Pattern is the leaf route's full pattern ("/users/:id"). Unlike
	// FullPath it is bounded in cardinality, which makes it the right
	// label for metrics and traces.
	Pattern string

	// Params holds the bound path parameters.
	Params map[string]string

	// Query holds the decoded query string.
	Query url.Values

	// FullPath is the canonical path with query and hash.
	FullPath string

	// Metadata is the merged metadata of the matched chain.
	Metadata map[string]any
}

// Navigation describes an in-flight navigation handed to middleware.
type Navigation struct {
	// From is the last settled route. Nil on the first load.
	From *RouteData

	// To is the target being navigated to.
	To *RouteData
}

// Redirect instructs the router to abandon the current target and
// navigate to To instead.
type Redirect struct {
	To string
}

// Middleware inspects a navigation before any content renders. Returning
// a non-nil Redirect re-targets the navigation; returning an error aborts
// it. Middleware runs strictly in registration order and cannot suspend
// the pipeline.
type Middleware interface {
	Handle(ctx context.Context, nav Navigation) (*Redirect, error)
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(ctx context.Context, nav Navigation) (*Redirect, error)

// Handle calls f.
func (f MiddlewareFunc) Handle(ctx context.Context, nav Navigation) (*Redirect, error) {
	return f(ctx, nav)
}

// Skip wraps mw so it passes through navigations whose target path is
// under any of the given prefixes.
//
//	router.Skip(requireAuth, "/login", "/public")
func Skip(mw Middleware, prefixes ...string) Middleware {
	return MiddlewareFunc(func(ctx context.Context, nav Navigation) (*Redirect, error) {
		if targetUnder(nav, prefixes) {
			return nil, nil
		}
		return mw.Handle(ctx, nav)
	})
}

// Only wraps mw so it runs only for navigations whose target path is
// under one of the given prefixes.
//
//	router.Only(requireAdmin, "/admin")
func Only(mw Middleware, prefixes ...string) Middleware {
	return MiddlewareFunc(func(ctx context.Context, nav Navigation) (*Redirect, error) {
		if targetUnder(nav, prefixes) {
			return mw.Handle(ctx, nav)
		}
		return nil, nil
	})
}

func targetUnder(nav Navigation, prefixes []string) bool {
	if nav.To == nil {
		return false
	}
	path := nav.To.FullPath
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		if path == prefix || strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/") {
			return true
		}
	}
	return false
}

// snapshotRouteData freezes a match result into the form middleware sees.
func snapshotRouteData(result *route.MatchResult) *RouteData {
	if result == nil {
		return nil
	}
	data := &RouteData{
		Params:   result.Params,
		Query:    result.Query,
		FullPath: result.FullPath,
		Metadata: result.Metadata,
	}
	if leaf := result.Leaf(); leaf != nil {
		data.Name = leaf.Route.Name()
		data.Pattern = leaf.Route.Pattern()
	}
	return data
}
