package vdom

import (
	"fmt"
	"strconv"
	"strings"
)

// attr creates an Attr with the given key and value.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// FormatAttr renders a prop value the way it would appear in markup.
// Function values (event handlers) are not representable.
func FormatAttr(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	case nil:
		return "", false
	default:
		return fmt.Sprintf("%v", v), true
	}
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute (named to avoid conflict with a Style element).
func StyleAttr(style string) Attr { return attr("style", style) }

// Key sets the reconciliation key for a node.
func Key(key any) Attr {
	return attr("key", fmt.Sprintf("%v", key))
}

// Data attributes

// Data creates a data-* attribute.
// Example: Data("id", "123") -> data-id="123"
func Data(key, value string) Attr { return attr("data-"+key, value) }

// Link attributes

// Href sets the href attribute.
func Href(href string) Attr { return attr("href", href) }

// Target sets the target attribute.
func Target(target string) Attr { return attr("target", target) }

// Rel sets the rel attribute.
func Rel(rel string) Attr { return attr("rel", rel) }

// Media attributes

// Src sets the src attribute.
func Src(src string) Attr { return attr("src", src) }

// Alt sets the alt attribute.
func Alt(alt string) Attr { return attr("alt", alt) }

// Form attributes

// Type sets the type attribute.
func Type(t string) Attr { return attr("type", t) }

// Name sets the name attribute.
func Name(name string) Attr { return attr("name", name) }

// Value sets the value attribute.
func Value(value string) Attr { return attr("value", value) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return attr("placeholder", text) }

// Disabled sets the disabled attribute.
func Disabled(disabled bool) Attr { return attr("disabled", disabled) }

// Accessibility attributes

// Role sets the role attribute.
func Role(role string) Attr { return attr("role", role) }

// AriaLabel sets the aria-label attribute.
func AriaLabel(label string) Attr { return attr("aria-label", label) }

// AriaCurrent sets the aria-current attribute.
func AriaCurrent(value string) Attr { return attr("aria-current", value) }

// AriaHidden sets the aria-hidden attribute.
func AriaHidden(hidden bool) Attr { return attr("aria-hidden", hidden) }

// TabIndex sets the tabindex attribute.
func TabIndex(index int) Attr { return attr("tabindex", index) }

// TitleAttr sets the title attribute.
func TitleAttr(title string) Attr { return attr("title", title) }
