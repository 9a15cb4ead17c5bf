package vdom

// event builds an EventHandler prop. The "on" prefix is how Materialize
// tells handlers from plain attributes.
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// OnClick fires when the element is activated. Router links hang their
// navigation interception on it.
func OnClick(handler any) EventHandler { return event("click", handler) }

// OnInput fires on every edit of a control's value.
func OnInput(handler any) EventHandler { return event("input", handler) }

// OnChange fires when an edited value is committed.
func OnChange(handler any) EventHandler { return event("change", handler) }

// OnSubmit fires when a form is submitted.
func OnSubmit(handler any) EventHandler { return event("submit", handler) }
