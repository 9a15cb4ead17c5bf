package router

import (
	"context"
	"strings"

	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// linkRef records one registered navigation link.
type linkRef struct {
	id   string
	href string
}

// Link returns an anchor that navigates through the router instead of
// triggering a page load. After every settled navigation the router
// toggles the "active" class on the anchor when the current path starts
// with href, and sets aria-current="page" on an exact match.
func (r *Router) Link(href, label string, attrs ...vdom.Attr) *vdom.VNode {
	return r.LinkNode(href, vdom.Text(label), attrs...)
}

// LinkNode is Link with arbitrary child content.
func (r *Router) LinkNode(href string, child *vdom.VNode, attrs ...vdom.Attr) *vdom.VNode {
	id := r.nextElementID("link")
	r.registerLink(id, href)

	args := []any{
		vdom.ID(id),
		vdom.Href(href),
		vdom.Attr{Key: attrLink, Value: "true"},
		vdom.Attr{Key: attrLinkID, Value: id},
		vdom.Attr{Key: attrScope, Value: r.scope},
		vdom.OnClick(func() {
			if err := r.Navigate(context.Background(), href); err != nil {
				r.logger.Error("link navigation failed", "href", href, "error", err)
			}
		}),
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	if child != nil {
		args = append(args, child)
	}
	return vdom.A(args...)
}

func (r *Router) registerLink(id, href string) {
	r.mu.Lock()
	r.links = append(r.links, linkRef{id: id, href: href})
	r.mu.Unlock()
}

// refreshLinks re-evaluates the active indicator on every registered
// link against the settled path. Links whose elements left the document
// are pruned.
func (r *Router) refreshLinks() {
	current := r.CurrentPath()
	if current == nil {
		return
	}
	fullPath := current.FullPath

	r.mu.Lock()
	links := make([]linkRef, len(r.links))
	copy(links, r.links)
	r.mu.Unlock()

	var dead map[string]bool
	for _, ref := range links {
		el, ok := r.doc.ByID(ref.id)
		if !ok {
			if dead == nil {
				dead = make(map[string]bool)
			}
			dead[ref.id] = true
			continue
		}

		if strings.HasPrefix(fullPath, ref.href) {
			el.AddClass("active")
			if fullPath == ref.href {
				el.SetAttr("aria-current", "page")
			} else {
				el.RemoveAttr("aria-current")
			}
		} else {
			el.RemoveClass("active")
			el.RemoveAttr("aria-current")
		}
	}

	if len(dead) == 0 {
		return
	}
	r.mu.Lock()
	kept := r.links[:0]
	for _, ref := range r.links {
		if !dead[ref.id] {
			kept = append(kept, ref)
		}
	}
	r.links = kept
	r.mu.Unlock()
}
