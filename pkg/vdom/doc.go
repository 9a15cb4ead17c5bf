// Package vdom provides the virtual node vocabulary for Viaduct.
//
// Route components produce *VNode trees; the engine materializes them into
// the document behind the dom.Document interface. Outlet contents are
// replaced wholesale on navigation rather than diffed, so the vocabulary
// stays small: elements, text, fragments, components, and raw HTML for
// trusted content.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("page"),
//	    H1(Text("Profile")),
//	    A(Href("/users/1"), Text("Details")),
//	    OnClick(handler),
//	)
//
// Factory arguments may be Attr values, EventHandler values, child nodes,
// node slices, components, or plain strings (shorthand for text nodes).
// Nil arguments are skipped, which keeps conditional rendering terse.
package vdom
