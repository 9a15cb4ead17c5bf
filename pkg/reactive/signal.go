// Package reactive provides the observable value cells the router publishes
// navigation state through. Components subscribe to a Signal instead of
// re-registering routes when only a parameter changes.
package reactive

import (
	"reflect"
	"sync"
)

// Signal is a reactive value container. Subscribers are notified after the
// value changes; reads never block notification delivery.
type Signal[T any] struct {
	// value is the current signal value.
	value T

	// mu protects the value.
	mu sync.RWMutex

	// subs are the subscriber callbacks keyed by subscription id.
	subs map[uint64]func(T)

	// nextSub is the next subscription id.
	nextSub uint64

	// subMu protects subs and nextSub.
	subMu sync.RWMutex

	// equal is the equality function used to determine if the value changed.
	// If nil, uses default equality checking.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		value: initial,
		subs:  make(map[uint64]func(T)),
	}
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set updates the signal's value and notifies subscribers if the value changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify(value)
	}
}

// Update atomically reads and updates the signal's value.
// The function receives the current value and returns the new value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	newValue := fn(s.value)
	changed := !s.equals(s.value, newValue)
	if changed {
		s.value = newValue
	}
	s.mu.Unlock()

	if changed {
		s.notify(newValue)
	}
}

// Subscribe registers fn to run after every value change. The returned
// cancel function removes the subscription; calling it twice is safe.
func (s *Signal[T]) Subscribe(fn func(T)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// WithEquals returns the signal configured with a custom equality function.
// Useful for types where reflect.DeepEqual is too expensive or has the
// wrong semantics.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// notify delivers the new value to subscribers. Uses copy-before-notify to
// avoid holding the subscriber lock during callbacks.
func (s *Signal[T]) notify(value T) {
	s.subMu.RLock()
	subs := make([]func(T), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(value)
	}
}

// equals checks if two values are equal using the configured equality function.
func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals provides type-appropriate equality checking.
// Uses == for common scalar types and reflect.DeepEqual for others.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
