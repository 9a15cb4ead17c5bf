package viaduct

import (
	"context"

	"github.com/viaduct-dev/viaduct/pkg/route"
	"github.com/viaduct-dev/viaduct/pkg/router"
	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// =============================================================================
// Routing (pkg/route exposed at the root)
// =============================================================================

// Record declares one route. See route.Record.
type Record = route.Record

// Handler renders one level of the matched route chain.
type Handler = route.Handler

// Ctx is the navigation context a handler renders against.
type Ctx = route.Ctx

// Info carries the match context handed to metadata functions.
type Info = route.Info

// MetadataFunc computes route metadata from the match context.
type MetadataFunc = route.MetadataFunc

// MatchResult is the outcome of matching one path.
type MatchResult = route.MatchResult

// Lazy defers component construction until first activation.
func Lazy(load func(ctx context.Context) (route.Handler, error)) *route.LazyHandler {
	return route.Lazy(load)
}

// =============================================================================
// Navigation (pkg/router exposed at the root)
// =============================================================================

// Middleware inspects each navigation and may redirect or fail it.
type Middleware = router.Middleware

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc = router.MiddlewareFunc

// Navigation is the {From, To} pair handed to middleware.
type Navigation = router.Navigation

// RouteData is one side of a Navigation.
type RouteData = router.RouteData

// Redirect is a middleware response that sends navigation elsewhere.
type Redirect = router.Redirect

// Skip wraps a middleware so it ignores navigations whose target path
// starts with one of the prefixes.
func Skip(mw router.Middleware, prefixes ...string) router.Middleware {
	return router.Skip(mw, prefixes...)
}

// Only wraps a middleware so it runs solely for navigations whose target
// path starts with one of the prefixes.
func Only(mw router.Middleware, prefixes ...string) router.Middleware {
	return router.Only(mw, prefixes...)
}

// =============================================================================
// Rendering (pkg/vdom exposed at the root)
// =============================================================================

// VNode is a virtual node.
type VNode = vdom.VNode

// Attr is a plain key/value attribute.
type Attr = vdom.Attr

// Component is a renderable with state.
type Component = vdom.Component

// Func adapts a render function to the Component interface.
func Func(render func() *vdom.VNode) vdom.Component {
	return vdom.Func(render)
}
