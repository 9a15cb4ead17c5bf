// Package history models the session history the router is bound to.
//
// The router consumes Stack events (initial load, back/forward traversal,
// hash changes) and produces Push/Replace calls when navigations settle.
// NewMemory provides a complete in-memory stack; a browser binding adapts
// pushState/popstate/hashchange onto the same interface.
package history

// Kind classifies a history event.
type Kind int

const (
	// KindLoad is the initial page load.
	KindLoad Kind = iota

	// KindPop is a back/forward traversal.
	KindPop

	// KindHash is a traversal where only the fragment changed.
	KindHash
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "Load"
	case KindPop:
		return "Pop"
	case KindHash:
		return "Hash"
	default:
		return "Unknown"
	}
}

// Event is a browser-driven history change the router should follow.
type Event struct {
	Kind Kind
	Path string // full path including query and hash
}

// Stack is the session history surface.
type Stack interface {
	// Push appends an entry after the cursor, dropping any forward tail.
	Push(path string)

	// Replace swaps the entry at the cursor.
	Replace(path string)

	// Back moves the cursor back one entry and emits an event.
	Back()

	// Forward moves the cursor forward one entry and emits an event.
	Forward()

	// Current returns the entry at the cursor.
	Current() string

	// Subscribe registers fn for history events. The new subscriber
	// immediately receives a KindLoad event for the current entry. The
	// returned cancel function removes the subscription.
	Subscribe(fn func(Event)) (cancel func())
}
