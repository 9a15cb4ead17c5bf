// Package dom abstracts the document Viaduct renders into.
//
// The engine never touches a real browser directly; it drives these
// interfaces. NewMemoryDocument provides a complete in-memory
// implementation used by tests and the dev server. A binding to an actual
// browser (webview, wasm) implements the same two interfaces.
package dom

// Document is the render target for the navigation engine.
type Document interface {
	// Title returns the document title.
	Title() string

	// SetTitle sets the document title.
	SetTitle(title string)

	// Root returns the element route content is mounted under.
	Root() Element

	// CreateElement creates a detached element with the given tag.
	CreateElement(tag string) Element

	// CreateText creates a detached text node.
	CreateText(text string) Element

	// ByID finds an attached element by its id attribute.
	ByID(id string) (Element, bool)
}

// Element is a single node in the document tree. Text nodes report the
// pseudo tag "#text".
type Element interface {
	// Tag returns the element's tag name.
	Tag() string

	// Attr returns the named attribute.
	Attr(name string) (string, bool)

	// SetAttr sets the named attribute.
	SetAttr(name, value string)

	// RemoveAttr removes the named attribute.
	RemoveAttr(name string)

	// Text returns the concatenated text content of this subtree.
	Text() string

	// Children returns the current child nodes.
	Children() []Element

	// Append adds children to the end of this element.
	Append(children ...Element)

	// ReplaceChildren removes all current children and installs the given
	// ones. With no arguments it empties the element.
	ReplaceChildren(children ...Element)

	// AddClass adds a class to the class attribute if not present.
	AddClass(name string)

	// RemoveClass removes a class from the class attribute.
	RemoveClass(name string)

	// HasClass reports whether the class attribute contains name.
	HasClass(name string) bool

	// On registers a handler for the named event (e.g. "click").
	On(event string, fn func())

	// Fire dispatches the named event to registered handlers.
	Fire(event string)

	// Remove detaches this element from its parent.
	Remove()
}
