package history

import (
	"strings"
	"sync"
)

// Memory is a complete in-memory history stack. It mirrors browser
// semantics: Push and Replace are silent, only traversal emits events, and
// a Push drops the forward tail.
type Memory struct {
	mu      sync.Mutex
	entries []string
	cursor  int
	subs    map[uint64]func(Event)
	nextSub uint64
}

// NewMemory creates a stack seeded with the initial entry.
func NewMemory(initial string) *Memory {
	if initial == "" {
		initial = "/"
	}
	return &Memory{
		entries: []string{initial},
		subs:    make(map[uint64]func(Event)),
	}
}

// Push appends an entry after the cursor, dropping any forward tail.
func (m *Memory) Push(path string) {
	m.mu.Lock()
	m.entries = append(m.entries[:m.cursor+1], path)
	m.cursor = len(m.entries) - 1
	m.mu.Unlock()
}

// Replace swaps the entry at the cursor.
func (m *Memory) Replace(path string) {
	m.mu.Lock()
	m.entries[m.cursor] = path
	m.mu.Unlock()
}

// Back moves the cursor back one entry. At the oldest entry it is a no-op.
func (m *Memory) Back() {
	m.traverse(-1)
}

// Forward moves the cursor forward one entry. At the newest entry it is a
// no-op.
func (m *Memory) Forward() {
	m.traverse(+1)
}

func (m *Memory) traverse(delta int) {
	m.mu.Lock()
	next := m.cursor + delta
	if next < 0 || next >= len(m.entries) {
		m.mu.Unlock()
		return
	}
	from := m.entries[m.cursor]
	m.cursor = next
	to := m.entries[m.cursor]
	subs := m.snapshotSubsLocked()
	m.mu.Unlock()

	kind := KindPop
	if hashOnlyChange(from, to) {
		kind = KindHash
	}
	for _, fn := range subs {
		fn(Event{Kind: kind, Path: to})
	}
}

// Current returns the entry at the cursor.
func (m *Memory) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.cursor]
}

// Entries returns a copy of the stack, oldest first.
func (m *Memory) Entries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	copy(out, m.entries)
	return out
}

// Subscribe registers fn and immediately delivers a KindLoad event for the
// current entry.
func (m *Memory) Subscribe(fn func(Event)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	current := m.entries[m.cursor]
	m.mu.Unlock()

	fn(Event{Kind: KindLoad, Path: current})

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// snapshotSubsLocked copies the subscriber list. Caller holds mu.
func (m *Memory) snapshotSubsLocked() []func(Event) {
	out := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}

// hashOnlyChange reports whether two paths differ only in their fragment.
func hashOnlyChange(a, b string) bool {
	if a == b {
		return false
	}
	base := func(p string) string {
		if i := strings.IndexByte(p, '#'); i >= 0 {
			return p[:i]
		}
		return p
	}
	return base(a) == base(b)
}
