// Package render converts VNode trees into HTML.
//
// The dev server uses it to produce the shell page and static prerenders
// of route content. It handles:
//
//   - HTML5 compliant element rendering
//   - Text and attribute escaping (XSS prevention)
//   - Void element handling (input, br, img, etc.)
//   - Boolean attribute handling (disabled, checked, etc.)
//   - Event handler markers (data-on-*) for prerendered content
//   - Full shell rendering with DOCTYPE, head, body, client script
//
// # Basic Usage
//
// To render a VNode tree to a string:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	html, err := renderer.RenderToString(node)
//
// To stream HTML to a writer:
//
//	renderer := render.NewRenderer(render.RendererConfig{})
//	err := renderer.RenderToWriter(w, node)
//
// # Shell Rendering
//
// To render the complete HTML document the client boots from:
//
//	shell := render.Shell{
//	    Title: "My App",
//	    Body:  bodyNode,
//	    BootConfig: map[string]any{
//	        "wsPath": "/_viaduct/ws",
//	    },
//	}
//	err := renderer.RenderShell(w, shell)
//
// # Security
//
// All text content is escaped by default. Raw HTML can be inserted using
// KindRaw nodes, but should only be used with trusted content.
package render
