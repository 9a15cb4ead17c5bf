package router

import (
	"context"
	"net/url"

	"github.com/viaduct-dev/viaduct/internal/errors"
	"github.com/viaduct-dev/viaduct/pkg/dom"
	"github.com/viaduct-dev/viaduct/pkg/route"
)

// historyMode says what a settled load does to the history stack.
type historyMode int

const (
	historyNone historyMode = iota
	historyPush
	historyReplace
)

// load drives one navigation end to end: idempotence check, generation
// stamp, settle, link refresh, history update. force skips the
// idempotence check so a hot swap can re-render the settled path.
func (r *Router) load(ctx context.Context, path string, mode historyMode, force bool) (bool, error) {
	r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	r.stats.recordStart()

	// Navigating to the already settled path is a no-op.
	if !force {
		if current := r.CurrentPath(); current != nil {
			if canon, query, hash, err := route.Canonicalize(path); err == nil {
				if route.FullPath(canon, query, hash) == current.FullPath {
					return true, nil
				}
			}
		}
	}

	gen := r.generation.Add(1)

	loaded, err := r.settle(ctx, path, mode, gen)
	if err != nil {
		return false, err
	}

	r.refreshLinks()

	if loaded && r.generation.Load() == gen {
		switch mode {
		case historyPush:
			r.hist.Push(path)
		case historyReplace:
			r.hist.Replace(path)
		}
	}
	return loaded, nil
}

// settle matches path, runs middleware, renders, and commits the result.
// It reports whether this navigation loaded; a redirect hop reports
// false because the navigation it re-entered owns completion. mode is
// what the originating navigation would do to history; redirect hops
// inherit it.
func (r *Router) settle(ctx context.Context, path string, mode historyMode, gen uint64) (bool, error) {
	result := r.tree.Match(path)
	if result == nil {
		// Malformed path; the matcher already warned. Same flow as a
		// structural miss.
		result = &route.MatchResult{
			Path:     path,
			FullPath: path,
			Params:   map[string]string{},
			Query:    url.Values{},
		}
	}

	if err := result.CollectMetadata(ctx); err != nil {
		return false, err
	}
	result.FlattenTransient()

	if r.generation.Load() != gen {
		r.stats.recordStale()
		return false, nil
	}

	// Params publish before middleware so components keyed on them see
	// the new values even when the navigation later redirects or aborts.
	r.params.Set(result.Params)

	leaf := result.Leaf()

	if leaf != nil {
		nav := Navigation{
			From: snapshotRouteData(r.CurrentPath()),
			To:   snapshotRouteData(result),
		}
		for _, mw := range r.middlewares {
			redirect, err := mw.Handle(ctx, nav)
			if err != nil {
				return false, errors.FromError(err, "N001")
			}
			if redirect == nil {
				continue
			}
			if sameTarget(redirect.To, result) {
				r.logger.Warn("ignoring redirect to the current target",
					"path", result.FullPath)
				continue
			}
			return r.redirect(ctx, redirect.To, result.FullPath, mode)
		}
	}

	if leaf == nil {
		return r.renderNotFound(ctx, result, gen)
	}

	done, loaded, err := r.walkOutlets(ctx, result, mode, gen)
	if !done {
		return loaded, err
	}

	if target := leaf.Route.Redirect(); target != "" {
		if sameTarget(target, result) {
			r.logger.Warn("ignoring redirect to the current target",
				"path", result.FullPath)
		} else {
			return r.redirect(ctx, target, result.FullPath, mode)
		}
	}

	if r.generation.Load() != gen {
		r.stats.recordStale()
		return false, nil
	}

	r.mu.Lock()
	r.currentPath = result
	if r.redirectCount > 0 {
		r.redirectCount--
	}
	r.mu.Unlock()

	r.location.Set(result.FullPath)
	r.stats.recordSettled()
	return true, nil
}

// walkOutlets renders the flattened chain into the registered outlets,
// one level per depth. done reports whether the walk ran to completion;
// when false the walk already decided the navigation's outcome (redirect
// hop, stale abandon, resolve error) and loaded/err carry it.
func (r *Router) walkOutlets(ctx context.Context, result *route.MatchResult, mode historyMode, gen uint64) (done, loaded bool, err error) {
	registry := r.tree.Registry()
	depth := 0
	node := result.SubTree

	for node != nil {
		rt := node.Route

		if !registry.Has(rt) {
			if node.Child != nil {
				// Grouping level: descend without consuming an outlet.
				node = node.Child
				continue
			}
			if target := rt.Redirect(); target != "" && !sameTarget(target, result) {
				loaded, err = r.redirect(ctx, target, result.FullPath, mode)
				return false, loaded, err
			}
			r.renderPlaceholder(depth, result, gen)
			depth++
			break
		}

		outlet, ok := r.outletAt(depth)
		if !ok {
			r.logger.Warn("no outlet registered for depth",
				"depth", depth, "path", result.FullPath)
			break
		}

		// Static handoff: pre-rendered content survives one pass, then
		// the outlet behaves dynamically.
		if truthyAttr(outlet, attrOutletStatic) {
			outlet.RemoveAttr(attrOutletStatic)
			outlet.SetAttr(attrOutletPath, node.Path)
			depth++
			node = node.Child
			continue
		}

		// Same render path as last time: content is already right.
		// Param-only changes land here; the params signal carries them.
		if tag, _ := outlet.Attr(attrOutletPath); tag == node.Path {
			depth++
			node = node.Child
			continue
		}

		handler, err := registry.Resolve(ctx, rt)
		if err != nil {
			return false, false, err
		}

		prevTag, _ := outlet.Attr(attrOutletPath)
		rctx := &renderCtx{ctx: ctx, result: result, path: node.Path}
		nodes := dom.Materialize(r.doc, handler(rctx))

		if r.generation.Load() != gen {
			r.stats.recordStale()
			return false, false, nil
		}
		if nowTag, _ := outlet.Attr(attrOutletPath); nowTag != prevTag {
			// The handler navigated synchronously and something else
			// re-owned this outlet. Keep that outcome.
			depth++
			node = node.Child
			continue
		}

		outlet.SetAttr(attrOutletPath, node.Path)
		if transition := rt.Transition(); transition != "" {
			outlet.SetAttr(attrTransition, transition)
		} else {
			outlet.RemoveAttr(attrTransition)
		}
		outlet.ReplaceChildren(nodes...)
		if title := rt.Title(); title != "" {
			r.doc.SetTitle(title)
		}

		depth++
		node = node.Child
	}

	if r.generation.Load() != gen {
		r.stats.recordStale()
		return false, false, nil
	}
	r.clearOutletsFrom(depth)
	return true, false, nil
}

// renderPlaceholder handles a matched leaf that has neither a component
// nor a redirect. The navigation still settles.
func (r *Router) renderPlaceholder(depth int, result *route.MatchResult, gen uint64) {
	r.stats.recordNotFound()
	r.logger.Warn("matched route has nothing to render", "path", result.FullPath)

	outlet, ok := r.outletAt(depth)
	if !ok {
		return
	}
	if r.generation.Load() != gen {
		r.stats.recordStale()
		return
	}
	outlet.RemoveAttr(attrOutletPath)
	outlet.RemoveAttr(attrTransition)
	outlet.ReplaceChildren(r.doc.CreateText("Route not found: " + result.Path))
}

// renderNotFound writes the not-found view into the first outlet. The
// navigation reports loaded, and history moves, but currentPath keeps
// its previous value.
func (r *Router) renderNotFound(ctx context.Context, result *route.MatchResult, gen uint64) (bool, error) {
	r.stats.recordNotFound()
	r.logger.Warn("route not found", "path", result.Path)

	outlet, ok := r.firstOutlet()
	if !ok {
		r.logger.Warn("no outlet to render the not-found view into", "path", result.Path)
		return true, nil
	}

	var nodes []dom.Element
	if r.notFound != nil {
		rctx := &renderCtx{ctx: ctx, result: result, path: result.Path}
		nodes = dom.Materialize(r.doc, r.notFound(rctx))
	} else {
		nodes = []dom.Element{r.doc.CreateText("Route not found: " + result.Path)}
	}

	if r.generation.Load() != gen {
		r.stats.recordStale()
		return false, nil
	}

	outlet.RemoveAttr(attrOutletPath)
	outlet.RemoveAttr(attrTransition)
	outlet.ReplaceChildren(nodes...)
	return true, nil
}

// redirect spends one budget hop and re-enters navigation. The
// recursive load owns completion, so the caller reports not-loaded.
func (r *Router) redirect(ctx context.Context, target, from string, mode historyMode) (bool, error) {
	r.mu.Lock()
	if r.redirectCount > r.maxRedirects {
		r.redirectCount = 0
		r.mu.Unlock()
		r.stats.recordAborted()
		r.logger.Warn("redirect budget exhausted, aborting navigation",
			"from", from, "to", target, "max", r.maxRedirects)
		return false, nil
	}
	r.redirectCount++
	r.mu.Unlock()

	r.stats.recordRedirect()
	// A pop or replace landing on a redirecting route must not grow the
	// stack: the hop replaces the entry instead, the way browsers do.
	// Only a push-originated navigation pushes its final target.
	next := historyReplace
	if mode == historyPush {
		next = historyPush
	}
	if _, err := r.load(ctx, target, next, false); err != nil {
		return false, err
	}
	return false, nil
}

// sameTarget reports whether a redirect target resolves to the path the
// navigation is already loading.
func sameTarget(target string, result *route.MatchResult) bool {
	canon, query, hash, err := route.Canonicalize(target)
	if err != nil {
		return false
	}
	return route.FullPath(canon, query, hash) == result.FullPath
}

func truthyAttr(el dom.Element, name string) bool {
	v, ok := el.Attr(name)
	return ok && v != "" && v != "false"
}
