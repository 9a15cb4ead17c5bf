// Package router drives client-side navigation for a Viaduct app.
//
// A Router owns a compiled route tree, the navigation state machine, and
// the mount points route content renders into. It binds to a history
// stack for back/forward traversal and exposes reactive signals for the
// current params and location.
//
// # Creating a router
//
//	r, err := router.New(router.Options{
//		Routes: []route.Record{
//			{Path: "/", Component: Home},
//			{Path: "/users/:id", Component: UserPage, Children: []route.Record{
//				{Path: "posts", Component: UserPosts},
//			}},
//		},
//		Document: doc,
//		History:  history.NewMemory("/"),
//	})
//
// # Mount points
//
// Route content renders into outlets. An outlet is registered for one
// chain depth: depth 0 receives the outermost matched route, depth 1 its
// child, and so on. Components at depth n place the outlet for depth n+1
// inside their own markup:
//
//	func Shell(ctx route.Ctx) *vdom.VNode {
//		return vdom.Div(
//			Navbar(r),
//			r.Outlet(1),
//		)
//	}
//
// # Navigating
//
// Navigate, Replace, Back and Forward move the router. Bind subscribes
// it to the history stack, which immediately replays the current entry
// so the first screen renders:
//
//	cancel := r.Bind(ctx)
//	defer cancel()
//	r.Navigate(ctx, "/users/7/posts")
//
// Navigation is sequential: middleware runs in registration order, may
// redirect or abort, and only the deepest surviving navigation touches
// the document. A generation counter makes overlapping navigations safe;
// stale ones abandon silently without partial writes.
package router
