package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// El creates a new VNode with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, Component, string, EventHandler.
func El(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional attributes)
			continue

		case Attr:
			node.apply(v)

		case []Attr:
			for _, a := range v {
				node.apply(a)
			}

		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*VNode:
			for _, child := range v {
				if child != nil {
					node.Children = append(node.Children, child)
				}
			}

		case Component:
			node.Children = append(node.Children, &VNode{
				Kind: KindComponent,
				Comp: v,
			})

		case string:
			node.Children = append(node.Children, &VNode{
				Kind: KindText,
				Text: v,
			})

		case EventHandler:
			node.Props[v.Event] = v.Handler
		}
	}

	return node
}

// apply sets a single attribute on the node. The "key" attribute is routed
// to the Key field instead of Props.
func (v *VNode) apply(a Attr) {
	if a.Key == "" {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			v.Key = s
			return
		}
	}
	v.Props[a.Key] = a.Value
}

// Document structure elements

func Head(args ...any) *VNode { return El("head", args...) }
func Body(args ...any) *VNode { return El("body", args...) }

// Content sectioning elements

func Header(args ...any) *VNode  { return El("header", args...) }
func Footer(args ...any) *VNode  { return El("footer", args...) }
func Main(args ...any) *VNode    { return El("main", args...) }
func Nav(args ...any) *VNode     { return El("nav", args...) }
func Section(args ...any) *VNode { return El("section", args...) }
func Article(args ...any) *VNode { return El("article", args...) }
func Aside(args ...any) *VNode   { return El("aside", args...) }
func H1(args ...any) *VNode      { return El("h1", args...) }
func H2(args ...any) *VNode      { return El("h2", args...) }
func H3(args ...any) *VNode      { return El("h3", args...) }
func H4(args ...any) *VNode      { return El("h4", args...) }

// Text content elements

func Div(args ...any) *VNode        { return El("div", args...) }
func P(args ...any) *VNode          { return El("p", args...) }
func Span(args ...any) *VNode       { return El("span", args...) }
func Pre(args ...any) *VNode        { return El("pre", args...) }
func Blockquote(args ...any) *VNode { return El("blockquote", args...) }
func Ul(args ...any) *VNode         { return El("ul", args...) }
func Ol(args ...any) *VNode         { return El("ol", args...) }
func Li(args ...any) *VNode         { return El("li", args...) }
func Hr(args ...any) *VNode         { return El("hr", args...) }

// Inline text semantics

func A(args ...any) *VNode      { return El("a", args...) }
func Strong(args ...any) *VNode { return El("strong", args...) }
func Em(args ...any) *VNode     { return El("em", args...) }
func Small(args ...any) *VNode  { return El("small", args...) }
func Code(args ...any) *VNode   { return El("code", args...) }
func Br(args ...any) *VNode     { return El("br", args...) }

// Form elements

func Form(args ...any) *VNode   { return El("form", args...) }
func Input(args ...any) *VNode  { return El("input", args...) }
func Button(args ...any) *VNode { return El("button", args...) }
func Label(args ...any) *VNode  { return El("label", args...) }
func Select(args ...any) *VNode { return El("select", args...) }
func Option(args ...any) *VNode { return El("option", args...) }

// Table elements

func Table(args ...any) *VNode { return El("table", args...) }
func Thead(args ...any) *VNode { return El("thead", args...) }
func Tbody(args ...any) *VNode { return El("tbody", args...) }
func Tr(args ...any) *VNode    { return El("tr", args...) }
func Th(args ...any) *VNode    { return El("th", args...) }
func Td(args ...any) *VNode    { return El("td", args...) }

// Media elements

func Img(args ...any) *VNode { return El("img", args...) }
