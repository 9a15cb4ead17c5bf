package render

// inlineElements render their children on the same line in pretty mode.
var inlineElements = map[string]bool{
	"a":      true,
	"abbr":   true,
	"b":      true,
	"bdi":    true,
	"bdo":    true,
	"button": true,
	"cite":   true,
	"code":   true,
	"data":   true,
	"dfn":    true,
	"em":     true,
	"i":      true,
	"kbd":    true,
	"label":  true,
	"mark":   true,
	"option": true,
	"q":      true,
	"rp":     true,
	"rt":     true,
	"ruby":   true,
	"s":      true,
	"samp":   true,
	"small":  true,
	"span":   true,
	"strong": true,
	"sub":    true,
	"sup":    true,
	"time":   true,
	"u":      true,
	"var":    true,
}

// booleanAttrs render as a bare attribute name when true and are omitted
// entirely when false.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"formnovalidate":  true,
	"hidden":          true,
	"inert":           true,
	"ismap":           true,
	"itemscope":       true,
	"loop":            true,
	"multiple":        true,
	"muted":           true,
	"nomodule":        true,
	"novalidate":      true,
	"open":            true,
	"readonly":        true,
	"required":        true,
	"reversed":        true,
	"selected":        true,
}

// isInlineElement reports whether tag is an inline-level element.
func isInlineElement(tag string) bool {
	return inlineElements[tag]
}

// isBooleanAttr reports whether name is an HTML boolean attribute.
func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
