package route

import (
	"context"
	"net/url"

	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// Handler renders one level of the matched route chain.
type Handler func(Ctx) *vdom.VNode

// Ctx is the navigation context a handler renders against.
type Ctx interface {
	// Context returns the context of the navigation that triggered
	// this render.
	Context() context.Context

	// Path is the render path of this chain level.
	Path() string

	// FullPath is the canonical navigated path including query and hash.
	FullPath() string

	// Param returns one captured path parameter ("" when absent).
	Param(name string) string

	// Params returns all captured path parameters.
	Params() map[string]string

	// Query returns the parsed query string.
	Query() url.Values

	// Hash returns the fragment without the leading "#".
	Hash() string

	// Metadata returns the merged route metadata for the active chain.
	Metadata() map[string]any
}

// Info carries the match context handed to metadata functions.
type Info struct {
	Params map[string]string
	Query  url.Values
}

// MetadataFunc computes route metadata from the match context. It may do
// blocking work; an error aborts the navigation that invoked it.
type MetadataFunc func(ctx context.Context, info Info) (map[string]any, error)

// Record declares one route. Records are authored nested and compiled
// into a Tree; they are plain data and carry no behavior of their own.
type Record struct {
	// Name is an optional label for the route.
	Name string

	// Path is the raw path pattern relative to the parent record,
	// e.g. "users/:id", "docs/:rest*", "*". An empty path declares an
	// index child sharing the parent's pattern.
	Path string

	// Redirect, when non-empty, sends navigation to the given path
	// instead of rendering this route.
	Redirect string

	// Title is the document title applied when this route is the
	// deepest titled route on the active chain.
	Title string

	// Metadata is static metadata merged root-to-leaf at match time.
	Metadata map[string]any

	// MetadataFunc computes additional metadata from the match context.
	MetadataFunc MetadataFunc

	// Component renders this route level.
	Component Handler

	// Lazy defers component construction until first activation.
	Lazy *LazyHandler

	// Transition is a presentation hint exposed on the outlet container.
	Transition string

	// Children are nested records matched against the remaining path.
	Children []Record
}
