package router

import (
	"strconv"

	"github.com/viaduct-dev/viaduct/pkg/dom"
	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// Attributes the router stamps onto the elements it manages.
const (
	attrScope        = "data-router"
	attrOutlet       = "data-outlet"
	attrOutletDepth  = "data-outlet-depth"
	attrOutletPath   = "data-outlet-path"
	attrOutletStatic = "data-outlet-static"
	attrLink         = "data-link"
	attrLinkID       = "data-link-id"
	attrTransition   = "data-transition"
)

// outletRef records one registered mount point.
type outletRef struct {
	depth     int
	elementID string
}

// Outlet returns the mount point for one level of the matched chain.
// Depth 0 receives the outermost matched route, depth 1 its child, and
// so on. Constructing the node registers it with the router; a second
// outlet built for the same depth replaces the first, so re-rendered
// layouts reclaim their slot.
//
// Extra attributes are forwarded onto the container.
func (r *Router) Outlet(depth int, attrs ...vdom.Attr) *vdom.VNode {
	id := r.nextElementID("outlet")
	r.registerOutlet(depth, id)

	args := []any{
		vdom.ID(id),
		vdom.Attr{Key: attrOutlet, Value: "true"},
		vdom.Attr{Key: attrOutletDepth, Value: strconv.Itoa(depth)},
		vdom.Attr{Key: attrScope, Value: r.scope},
	}
	for _, a := range attrs {
		args = append(args, a)
	}
	return vdom.Div(args...)
}

func (r *Router) registerOutlet(depth int, elementID string) {
	r.mu.Lock()
	r.outlets[depth] = outletRef{depth: depth, elementID: elementID}
	r.mu.Unlock()
}

// outletAt resolves the registered outlet for a depth to a live element.
// A registration whose element left the document is dropped.
func (r *Router) outletAt(depth int) (dom.Element, bool) {
	r.mu.Lock()
	ref, ok := r.outlets[depth]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	el, ok := r.doc.ByID(ref.elementID)
	if !ok {
		r.mu.Lock()
		if r.outlets[depth].elementID == ref.elementID {
			delete(r.outlets, depth)
		}
		r.mu.Unlock()
		return nil, false
	}
	return el, true
}

// firstOutlet returns the live outlet with the lowest registered depth.
func (r *Router) firstOutlet() (dom.Element, bool) {
	r.mu.Lock()
	depths := make([]int, 0, len(r.outlets))
	for depth := range r.outlets {
		depths = append(depths, depth)
	}
	r.mu.Unlock()

	best, found := -1, false
	for _, d := range depths {
		if !found || d < best {
			best, found = d, true
		}
	}
	if !found {
		return nil, false
	}
	if el, ok := r.outletAt(best); ok {
		return el, true
	}
	return nil, false
}

// clearOutletsFrom empties every registered outlet at the given depth or
// deeper. Registrations whose elements left the document are dropped;
// live ones stay registered, because a layout rendered as the current
// leaf may already hold the empty outlet its children will use.
func (r *Router) clearOutletsFrom(depth int) {
	r.mu.Lock()
	var deeper []outletRef
	for d, ref := range r.outlets {
		if d >= depth {
			deeper = append(deeper, ref)
		}
	}
	r.mu.Unlock()

	for _, ref := range deeper {
		el, ok := r.doc.ByID(ref.elementID)
		if !ok {
			r.mu.Lock()
			if r.outlets[ref.depth].elementID == ref.elementID {
				delete(r.outlets, ref.depth)
			}
			r.mu.Unlock()
			continue
		}
		el.RemoveAttr(attrOutletPath)
		el.RemoveAttr(attrTransition)
		el.ReplaceChildren()
	}
}
