package dom

import (
	"strings"
	"sync"
)

// textTag is the pseudo tag reported by text nodes.
const textTag = "#text"

// MemoryDocument is a complete in-memory Document. It is safe for
// concurrent use; a single document-wide lock guards the whole tree,
// which is plenty for UI-sized documents.
type MemoryDocument struct {
	mu    sync.RWMutex
	title string
	root  *memElement
}

// NewMemoryDocument creates an empty document with a "body" root.
func NewMemoryDocument() *MemoryDocument {
	d := &MemoryDocument{}
	d.root = &memElement{doc: d, tag: "body", attrs: map[string]string{}}
	return d
}

// Title returns the document title.
func (d *MemoryDocument) Title() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.title
}

// SetTitle sets the document title.
func (d *MemoryDocument) SetTitle(title string) {
	d.mu.Lock()
	d.title = title
	d.mu.Unlock()
}

// Root returns the mount element.
func (d *MemoryDocument) Root() Element {
	return d.root
}

// CreateElement creates a detached element.
func (d *MemoryDocument) CreateElement(tag string) Element {
	return &memElement{doc: d, tag: tag, attrs: map[string]string{}}
}

// CreateText creates a detached text node.
func (d *MemoryDocument) CreateText(text string) Element {
	return &memElement{doc: d, tag: textTag, text: text}
}

// ByID finds an attached element by id. The tree is scanned linearly;
// documents here are test- and shell-sized.
func (d *MemoryDocument) ByID(id string) (Element, bool) {
	if id == "" {
		return nil, false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if el := d.root.findByID(id); el != nil {
		return el, true
	}
	return nil, false
}

// HTML returns a debug rendering of the document tree. It is not an
// escaping serializer; use pkg/render for real output.
func (d *MemoryDocument) HTML() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var sb strings.Builder
	d.root.writeDebug(&sb)
	return sb.String()
}

// memElement is the node type behind both elements and text nodes.
type memElement struct {
	doc      *MemoryDocument
	tag      string
	text     string
	attrs    map[string]string
	children []*memElement
	parent   *memElement
	handlers map[string][]func()
}

func (e *memElement) Tag() string { return e.tag }

func (e *memElement) Attr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	v, ok := e.attrs[name]
	return v, ok
}

func (e *memElement) SetAttr(name, value string) {
	if e.attrs == nil {
		return
	}
	e.doc.mu.Lock()
	e.attrs[name] = value
	e.doc.mu.Unlock()
}

func (e *memElement) RemoveAttr(name string) {
	e.doc.mu.Lock()
	delete(e.attrs, name)
	e.doc.mu.Unlock()
}

func (e *memElement) Text() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	var sb strings.Builder
	e.writeText(&sb)
	return sb.String()
}

func (e *memElement) Children() []Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	out := make([]Element, len(e.children))
	for i, c := range e.children {
		out[i] = c
	}
	return out
}

func (e *memElement) Append(children ...Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, c := range children {
		if me, ok := c.(*memElement); ok && me != nil {
			me.detachLocked()
			me.parent = e
			e.children = append(e.children, me)
		}
	}
}

func (e *memElement) ReplaceChildren(children ...Element) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = e.children[:0]
	for _, c := range children {
		if me, ok := c.(*memElement); ok && me != nil {
			me.detachLocked()
			me.parent = e
			e.children = append(e.children, me)
		}
	}
}

func (e *memElement) AddClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if name == "" || e.attrs == nil {
		return
	}
	classes := strings.Fields(e.attrs["class"])
	for _, c := range classes {
		if c == name {
			return
		}
	}
	classes = append(classes, name)
	e.attrs["class"] = strings.Join(classes, " ")
}

func (e *memElement) RemoveClass(name string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.attrs == nil {
		return
	}
	classes := strings.Fields(e.attrs["class"])
	kept := classes[:0]
	for _, c := range classes {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(e.attrs, "class")
		return
	}
	e.attrs["class"] = strings.Join(kept, " ")
}

func (e *memElement) HasClass(name string) bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	if e.attrs == nil {
		return false
	}
	for _, c := range strings.Fields(e.attrs["class"]) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *memElement) On(event string, fn func()) {
	if fn == nil {
		return
	}
	e.doc.mu.Lock()
	if e.handlers == nil {
		e.handlers = make(map[string][]func())
	}
	e.handlers[event] = append(e.handlers[event], fn)
	e.doc.mu.Unlock()
}

// Fire dispatches synchronously. Handlers run outside the document lock
// so they can navigate, which re-enters the tree.
func (e *memElement) Fire(event string) {
	e.doc.mu.RLock()
	fns := make([]func(), len(e.handlers[event]))
	copy(fns, e.handlers[event])
	e.doc.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *memElement) Remove() {
	e.doc.mu.Lock()
	e.detachLocked()
	e.doc.mu.Unlock()
}

// detachLocked unlinks the element from its parent. Caller holds doc.mu.
func (e *memElement) detachLocked() {
	p := e.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == e {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	e.parent = nil
}

// findByID walks the subtree looking for an id attribute. Caller holds doc.mu.
func (e *memElement) findByID(id string) *memElement {
	if e.attrs != nil && e.attrs["id"] == id {
		return e
	}
	for _, c := range e.children {
		if found := c.findByID(id); found != nil {
			return found
		}
	}
	return nil
}

// writeText appends the subtree's text content. Caller holds doc.mu.
func (e *memElement) writeText(sb *strings.Builder) {
	if e.tag == textTag {
		sb.WriteString(e.text)
		return
	}
	for _, c := range e.children {
		c.writeText(sb)
	}
}

// writeDebug appends a crude markup form for debugging. Caller holds doc.mu.
func (e *memElement) writeDebug(sb *strings.Builder) {
	if e.tag == textTag {
		sb.WriteString(e.text)
		return
	}
	sb.WriteByte('<')
	sb.WriteString(e.tag)
	for k, v := range e.attrs {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(v)
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	for _, c := range e.children {
		c.writeDebug(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.tag)
	sb.WriteByte('>')
}
