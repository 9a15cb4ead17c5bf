package route

import (
	"net/url"
	"strings"
)

// MatchedRoute is one link of a successful match, root to leaf.
type MatchedRoute struct {
	// Route is the compiled node; matching never mutates it.
	Route *Route

	// Path is the render path of this level: the node's pattern with
	// "*" wildcard segments replaced by the concrete matched text.
	// Parameter segments keep their ":name" spelling; their captured
	// values travel in MatchResult.Params.
	Path string

	// Child points toward the leaf; nil at the leaf.
	Child *MatchedRoute
}

// MatchResult is the outcome of matching one path. Everything scoped to
// a single navigation lives here rather than on the shared tree.
type MatchResult struct {
	// Path is the navigation target exactly as requested.
	Path string

	// FullPath is the canonical path joined with query and hash.
	FullPath string

	// Params maps dynamic segment names to captured text. One shared
	// map serves the whole match call: bindings written by branches
	// that later fail are kept, and a name bound twice must carry the
	// same value or the binding branch fails.
	Params map[string]string

	// Query is the parsed query string.
	Query url.Values

	// Hash is the fragment without the leading "#".
	Hash string

	// SubTree is the head of the matched chain, nil when no route
	// matched the path.
	SubTree *MatchedRoute

	// Metadata is the merged chain metadata, filled by CollectMetadata.
	Metadata map[string]any
}

// Leaf returns the deepest matched route, nil when nothing matched.
func (m *MatchResult) Leaf() *MatchedRoute {
	node := m.SubTree
	if node == nil {
		return nil
	}
	for node.Child != nil {
		node = node.Child
	}
	return node
}

// FlattenTransient splices grouping-only links out of the matched chain:
// parent -> transient -> child becomes parent -> child, and a transient
// head advances SubTree. A transient route that ended up as the leaf
// stays; the render walk shows its missing component explicitly.
func (m *MatchResult) FlattenTransient() {
	for m.SubTree != nil && m.SubTree.Route.Transient() && m.SubTree.Child != nil {
		m.SubTree = m.SubTree.Child
	}
	for node := m.SubTree; node != nil; node = node.Child {
		for node.Child != nil && node.Child.Route.Transient() && node.Child.Child != nil {
			node.Child = node.Child.Child
		}
	}
}

// Match resolves a path against the compiled forest.
//
// Roots are tried in declaration order. A root whose own segments do not
// match the whole path, and that has no children to descend into, is
// skipped; once matching has descended into a root's children, a failure
// there ends the whole match and no later root is tried. The returned
// result always carries the parsed
// path, query, hash, and accumulated params; SubTree is nil when nothing
// matched. A malformed path logs a warning and returns nil.
func (t *Tree) Match(path string) *MatchResult {
	canon, query, hash, err := Canonicalize(path)
	if err != nil {
		t.logger.Warn("ignoring malformed navigation path", "path", path, "error", err)
		return nil
	}

	result := &MatchResult{
		Path:     path,
		FullPath: FullPath(canon, query, hash),
		Params:   make(map[string]string),
		Query:    query,
		Hash:     hash,
	}

	segs := splitPath(canon)
	for _, root := range t.roots {
		chain, consumed := matchNode(root, segs, 0, result.Params)
		if chain != nil {
			result.SubTree = chain
			break
		}
		if consumed {
			break
		}
	}
	return result
}

// matchNode matches node's own segments against segs starting at idx and
// descends into children for whatever path remains. The second return
// reports whether the node consumed its own segments and then failed
// among its children; such a failure is final for the whole match.
func matchNode(node *Route, segs []string, idx int, params map[string]string) (*MatchedRoute, bool) {
	for _, seg := range node.segments {
		switch {
		case seg == "*":
			if idx >= len(segs) {
				return nil, false
			}
			idx++
		case strings.HasPrefix(seg, ":"):
			name := strings.TrimPrefix(seg, ":")
			if strings.HasSuffix(name, "*") {
				// Catch-all: bind everything left, empty included.
				name = strings.TrimSuffix(name, "*")
				rest := strings.Join(segs[idx:], "/")
				if prior, ok := params[name]; ok && prior != rest {
					return nil, false
				}
				params[name] = rest
				idx = len(segs)
			} else {
				if idx >= len(segs) {
					return nil, false
				}
				if prior, ok := params[name]; ok && prior != segs[idx] {
					return nil, false
				}
				params[name] = segs[idx]
				idx++
			}
		default:
			if idx >= len(segs) || segs[idx] != seg {
				return nil, false
			}
			idx++
		}
	}

	if idx == len(segs) {
		m := &MatchedRoute{Route: node, Path: renderPath(node, segs)}
		m.Child = matchIndex(node, segs)
		return m, true
	}

	for _, child := range node.children {
		if chain, _ := matchNode(child, segs, idx, params); chain != nil {
			return &MatchedRoute{Route: node, Path: renderPath(node, segs), Child: chain}, true
		}
	}
	// Finality only applies when there were children to descend into. A
	// childless node with path left over is an ordinary miss and the next
	// sibling root still gets its turn.
	return nil, len(node.children) > 0
}

// matchIndex extends a fully consumed match through index children
// (empty own path), so "/" can activate a layout and its index page.
func matchIndex(node *Route, segs []string) *MatchedRoute {
	for _, child := range node.children {
		if len(child.segments) == 0 {
			m := &MatchedRoute{Route: child, Path: renderPath(child, segs)}
			m.Child = matchIndex(child, segs)
			return m
		}
	}
	return nil
}

// renderPath substitutes concrete text for "*" positions in the node's
// pattern. Parameter segments keep their pattern spelling so that
// param-only navigation reuses outlet contents and the params signal
// carries the change.
func renderPath(node *Route, segs []string) string {
	if !strings.Contains(node.pattern, "*") {
		return node.pattern
	}
	parts := strings.Split(strings.TrimPrefix(node.pattern, "/"), "/")
	for i, p := range parts {
		if p == "*" && i < len(segs) {
			parts[i] = segs[i]
		}
	}
	return "/" + strings.Join(parts, "/")
}
