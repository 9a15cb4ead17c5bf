package dom

import (
	"sort"
	"strings"

	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// Materialize converts a virtual node tree into document elements.
// Fragments and components flatten into multiple elements; nil nodes
// produce nothing. Props whose key starts with "on" become event handlers
// when their value is a func(); everything else becomes an attribute.
//
// The returned elements are detached; the caller mounts them.
func Materialize(doc Document, node *vdom.VNode) []Element {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindText:
		return []Element{doc.CreateText(node.Text)}

	case vdom.KindRaw:
		// The memory document has no HTML parser; raw content is carried
		// as text. Real browser bindings parse it.
		return []Element{doc.CreateText(node.Text)}

	case vdom.KindFragment:
		var out []Element
		for _, child := range node.Children {
			out = append(out, Materialize(doc, child)...)
		}
		return out

	case vdom.KindComponent:
		if node.Comp == nil {
			return nil
		}
		return Materialize(doc, node.Comp.Render())

	case vdom.KindElement:
		el := doc.CreateElement(node.Tag)
		applyProps(el, node.Props)
		for _, child := range node.Children {
			el.Append(Materialize(doc, child)...)
		}
		return []Element{el}

	default:
		return nil
	}
}

// MaterializeAll converts a slice of nodes, flattening the results.
func MaterializeAll(doc Document, nodes []*vdom.VNode) []Element {
	var out []Element
	for _, n := range nodes {
		out = append(out, Materialize(doc, n)...)
	}
	return out
}

// applyProps installs attributes and handlers in deterministic key order.
func applyProps(el Element, props vdom.Props) {
	if len(props) == 0 {
		return
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := props[k]
		if strings.HasPrefix(k, "on") {
			if fn, ok := v.(func()); ok {
				el.On(strings.TrimPrefix(k, "on"), fn)
			}
			continue
		}
		if s, ok := vdom.FormatAttr(v); ok {
			el.SetAttr(k, s)
		}
	}
}
