package route

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/viaduct-dev/viaduct/internal/errors"
)

// ID is the stable identity of a compiled route. It is derived from the
// route's full pattern at compile time and disambiguated with an ordinal
// suffix when patterns collide, so it survives component hot swaps where
// pointer identity would not.
type ID string

// Route is one compiled node of the route tree. A route is built from
// exactly one Record and owns that record's path segments; it is immutable
// after compilation and shared between concurrent match calls.
type Route struct {
	id         ID
	name       string
	title      string
	redirect   string
	transition string

	// pattern is the full slash-normalized path from the forest root.
	pattern string

	// segments is the record's own raw path split on "/". Empty for an
	// index child.
	segments []string

	// dynamic and wildcard are set only when the record's raw path has
	// exactly one segment; multi-segment paths are never flagged.
	dynamic  bool
	wildcard bool

	metadata     map[string]any
	metadataFunc MetadataFunc
	handler      Handler
	lazy         *LazyHandler

	children []*Route
}

// ID returns the route's stable identity.
func (r *Route) ID() ID { return r.id }

// Name returns the optional route label.
func (r *Route) Name() string { return r.name }

// Title returns the document title carried by this route.
func (r *Route) Title() string { return r.title }

// Redirect returns the redirect target, or "" when the route renders.
func (r *Route) Redirect() string { return r.redirect }

// Transition returns the presentation hint for this route.
func (r *Route) Transition() string { return r.transition }

// Pattern returns the full path pattern from the forest root.
func (r *Route) Pattern() string { return r.pattern }

// Segments returns the route's own path segments.
func (r *Route) Segments() []string { return r.segments }

// Dynamic reports whether the route's own single segment binds a parameter.
func (r *Route) Dynamic() bool { return r.dynamic }

// Wildcard reports whether the route's own single segment is "*".
func (r *Route) Wildcard() bool { return r.wildcard }

// Metadata returns the route's static metadata.
func (r *Route) Metadata() map[string]any { return r.metadata }

// MetadataFunc returns the route's computed-metadata function.
func (r *Route) MetadataFunc() MetadataFunc { return r.metadataFunc }

// Handler returns the route's static component.
func (r *Route) Handler() Handler { return r.handler }

// Lazy returns the route's deferred component loader.
func (r *Route) Lazy() *LazyHandler { return r.lazy }

// Children returns the compiled children in declaration order.
func (r *Route) Children() []*Route { return r.children }

// Transient reports whether this route exists only to group children:
// it has children but nothing of its own to render or redirect to.
// Transient links are spliced out of match results before rendering.
func (r *Route) Transient() bool {
	return r.handler == nil && r.lazy == nil && r.redirect == "" && len(r.children) > 0
}

// Tree is a compiled route forest. It is immutable after construction;
// matching shares it freely across goroutines.
type Tree struct {
	roots    []*Route
	byID     map[ID]*Route
	registry *Registry
	logger   *slog.Logger
}

// TreeOption configures tree compilation.
type TreeOption func(*Tree)

// WithLogger sets the logger used for match-time warnings.
func WithLogger(logger *slog.Logger) TreeOption {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTree compiles nested records into a route forest.
//
// Each record becomes exactly one node whose pattern is the parent's
// pattern joined with the record's normalized path. Duplicate or
// overlapping patterns are not errors; the first structurally matching
// root wins at match time. Compilation fails on a parameter segment with
// an empty name and on a catch-all segment that is not the record's last
// own segment.
func NewTree(records []Record, opts ...TreeOption) (*Tree, error) {
	t := &Tree{
		byID:     make(map[ID]*Route),
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	seen := make(map[string]int)
	for _, rec := range records {
		root, err := compile(rec, "", seen)
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, root)
	}
	t.index(t.roots)
	return t, nil
}

// compile builds one route and its descendants.
func compile(rec Record, parentPattern string, seen map[string]int) (*Route, error) {
	own := normalizePattern(rec.Path)
	pattern := joinPattern(parentPattern, own)

	var segments []string
	if own != "" {
		segments = strings.Split(own, "/")
	}

	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		name := strings.TrimPrefix(seg, ":")
		catchAll := strings.HasSuffix(name, "*")
		name = strings.TrimSuffix(name, "*")
		if name == "" {
			return nil, errors.New("R002").
				WithDetailf("route %q declares segment %q without a parameter name", pattern, seg)
		}
		if catchAll && i != len(segments)-1 {
			return nil, errors.New("R003").
				WithDetailf("route %q places catch-all %q before the end of its path", pattern, seg)
		}
	}

	r := &Route{
		id:           assignID(pattern, seen),
		name:         rec.Name,
		title:        rec.Title,
		redirect:     rec.Redirect,
		transition:   rec.Transition,
		pattern:      pattern,
		segments:     segments,
		metadata:     rec.Metadata,
		metadataFunc: rec.MetadataFunc,
		handler:      rec.Component,
		lazy:         rec.Lazy,
	}
	if len(segments) == 1 {
		r.dynamic = strings.HasPrefix(segments[0], ":")
		r.wildcard = segments[0] == "*"
	}

	for _, child := range rec.Children {
		compiled, err := compile(child, pattern, seen)
		if err != nil {
			return nil, err
		}
		r.children = append(r.children, compiled)
	}
	return r, nil
}

// assignID derives a stable route identity from the full pattern,
// suffixing an ordinal when two routes share one.
func assignID(pattern string, seen map[string]int) ID {
	seen[pattern]++
	if n := seen[pattern]; n > 1 {
		return ID(fmt.Sprintf("%s#%d", pattern, n))
	}
	return ID(pattern)
}

func (t *Tree) index(routes []*Route) {
	for _, r := range routes {
		t.byID[r.id] = r
		t.index(r.children)
	}
}

// Roots returns the forest roots in declaration order.
func (t *Tree) Roots() []*Route { return t.roots }

// ByID looks up a compiled route by its stable identity.
func (t *Tree) ByID(id ID) (*Route, bool) {
	r, ok := t.byID[id]
	return r, ok
}

// All returns every compiled route in depth-first declaration order.
func (t *Tree) All() []*Route {
	var out []*Route
	var walk func([]*Route)
	walk = func(routes []*Route) {
		for _, r := range routes {
			out = append(out, r)
			walk(r.children)
		}
	}
	walk(t.roots)
	return out
}

// Registry returns the tree's component registry.
func (t *Tree) Registry() *Registry { return t.registry }

// normalizePattern collapses repeated slashes and trims the leading and
// trailing slash from a record path, leaving "" for root and index paths.
func normalizePattern(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return strings.Trim(path, "/")
}

// joinPattern appends a normalized own path to the parent's pattern.
func joinPattern(parent, own string) string {
	if own == "" {
		if parent == "" {
			return "/"
		}
		return parent
	}
	if parent == "" || parent == "/" {
		return "/" + own
	}
	return parent + "/" + own
}
