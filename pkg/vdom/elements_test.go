package vdom

import "testing"

func TestEl(t *testing.T) {
	t.Run("attrs and children", func(t *testing.T) {
		node := El("div", Class("card"), ID("main"), Span("inner"))

		if node.Kind != KindElement {
			t.Fatalf("Kind = %v, want KindElement", node.Kind)
		}
		if node.Tag != "div" {
			t.Errorf("Tag = %q, want %q", node.Tag, "div")
		}
		if node.Props["class"] != "card" {
			t.Errorf("class = %v, want %q", node.Props["class"], "card")
		}
		if node.Props["id"] != "main" {
			t.Errorf("id = %v, want %q", node.Props["id"], "main")
		}
		if len(node.Children) != 1 || node.Children[0].Tag != "span" {
			t.Errorf("unexpected children: %+v", node.Children)
		}
	})

	t.Run("string becomes text child", func(t *testing.T) {
		node := P("hello")
		if len(node.Children) != 1 {
			t.Fatalf("Children len = %d, want 1", len(node.Children))
		}
		if node.Children[0].Kind != KindText || node.Children[0].Text != "hello" {
			t.Errorf("child = %+v, want text 'hello'", node.Children[0])
		}
	})

	t.Run("nil args skipped", func(t *testing.T) {
		node := Div(nil, If(false, Span()), nil)
		if len(node.Children) != 0 {
			t.Errorf("Children len = %d, want 0", len(node.Children))
		}
	})

	t.Run("node slice flattened", func(t *testing.T) {
		items := Range([]string{"a", "b"}, func(s string, _ int) *VNode {
			return Li(s)
		})
		node := Ul(items)
		if len(node.Children) != 2 {
			t.Errorf("Children len = %d, want 2", len(node.Children))
		}
	})

	t.Run("key attr routed to Key field", func(t *testing.T) {
		node := Li(Key("row-3"), "third")
		if node.Key != "row-3" {
			t.Errorf("Key = %q, want %q", node.Key, "row-3")
		}
		if _, ok := node.Props["key"]; ok {
			t.Error("key should not remain in Props")
		}
	})

	t.Run("event handler stored in props", func(t *testing.T) {
		clicked := false
		node := Button(OnClick(func() { clicked = true }), "go")
		fn, ok := node.Props["onclick"].(func())
		if !ok {
			t.Fatalf("onclick prop = %T, want func()", node.Props["onclick"])
		}
		fn()
		if !clicked {
			t.Error("handler did not run")
		}
	})

	t.Run("component child wrapped", func(t *testing.T) {
		comp := Func(func() *VNode { return Span("c") })
		node := Div(comp)
		if len(node.Children) != 1 || node.Children[0].Kind != KindComponent {
			t.Errorf("unexpected children: %+v", node.Children)
		}
	})
}

func TestIsVoidElement(t *testing.T) {
	if !IsVoidElement("br") {
		t.Error("br should be void")
	}
	if IsVoidElement("div") {
		t.Error("div should not be void")
	}
}
