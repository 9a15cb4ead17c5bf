// Package route implements route declaration, compilation, and path
// matching for Viaduct.
//
// The package provides:
//   - Declarative nested route records with redirects, titles, and metadata
//   - A compiled, immutable route tree with stable per-route identities
//   - A path matcher producing a root-to-leaf chain of matched routes
//   - Lazy component loading with retry-on-failure semantics
//   - A handler registry for live component swaps keyed by route ID
//
// # Declaring routes
//
// Routes are declared as nested records and compiled once at startup:
//
//	tree, err := route.NewTree([]route.Record{
//	    {Path: "/", Component: Home, Children: []route.Record{
//	        {Path: "users/:id", Component: UserPage, Title: "User"},
//	        {Path: "docs/:rest*", Component: DocPage},
//	    }},
//	})
//
// Path patterns support three dynamic forms: ":name" binds one segment,
// ":name*" binds all remaining segments joined by "/", and "*" matches any
// one segment without binding. A record may own several segments
// ("users/:id/posts" compiles to a single node).
//
// # Matching
//
//	result := tree.Match("/users/42?tab=posts")
//	leaf := result.Leaf()          // deepest matched route
//	id := result.Params["id"]      // "42"
//
// Matching never mutates the compiled tree; every navigation-scoped value
// (captured params, query, concrete render paths) lives on the MatchResult.
package route
