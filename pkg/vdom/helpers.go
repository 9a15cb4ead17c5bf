package vdom

import "fmt"

// Text wraps a string in a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf is Text with Sprintf formatting.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Raw injects markup verbatim. The renderer does not escape it, so the
// content must never come from user input.
func Raw(html string) *VNode {
	return &VNode{Kind: KindRaw, Text: html}
}

// Fragment groups children under no element of its own. It accepts the
// same child forms as El: nodes, node slices, strings, and components.
// Nil entries are dropped.
func Fragment(children ...any) *VNode {
	frag := &VNode{Kind: KindFragment, Children: make([]*VNode, 0)}
	for _, child := range children {
		switch v := child.(type) {
		case nil:
		case *VNode:
			if v != nil {
				frag.Children = append(frag.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					frag.Children = append(frag.Children, c)
				}
			}
		case string:
			frag.Children = append(frag.Children, Text(v))
		case Component:
			frag.Children = append(frag.Children, &VNode{Kind: KindComponent, Comp: v})
		}
	}
	return frag
}

// If keeps node only when the condition holds; element child lists drop
// the resulting nil.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse picks one of two nodes.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When defers building the node until the condition holds, for branches
// whose construction is not free.
func When(condition bool, fn func() *VNode) *VNode {
	if !condition {
		return nil
	}
	return fn()
}

// Range builds one node per item. Items mapped to nil are skipped, so a
// single pass can filter and render.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if node := fn(item, i); node != nil {
			out = append(out, node)
		}
	}
	return out
}

// Nothing renders nothing; it reads better than a bare nil in a ternary
// helper chain.
func Nothing() *VNode {
	return nil
}
