package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/viaduct-dev/viaduct/internal/errors"
	"github.com/viaduct-dev/viaduct/pkg/dom"
	"github.com/viaduct-dev/viaduct/pkg/history"
	"github.com/viaduct-dev/viaduct/pkg/reactive"
	"github.com/viaduct-dev/viaduct/pkg/route"
)

// DefaultMaxRedirects bounds how many redirect hops one navigation chain
// may take before the router gives up.
const DefaultMaxRedirects = 10

// scopeSeq hands out scope suffixes so several routers can share a
// document without claiming each other's outlets and links.
var scopeSeq atomic.Uint64

// Options configures a Router. Routes, Document and History are
// required; everything else has a usable zero value.
type Options struct {
	// Routes is the record forest compiled into the route tree.
	Routes []route.Record

	// Middlewares run in order before each navigation renders.
	Middlewares []Middleware

	// MaxRedirects overrides DefaultMaxRedirects when positive.
	MaxRedirects int

	// Document is the render target.
	Document dom.Document

	// History is the session history the router binds to.
	History history.Stack

	// Logger receives navigation diagnostics. Defaults to slog.Default.
	Logger *slog.Logger

	// NotFound renders when no route matches. When nil the router writes
	// a plain text placeholder.
	NotFound route.Handler
}

// Router is the navigation engine. Create one with New, mount outlets
// and links, then Bind it to the history stack.
type Router struct {
	tree   *route.Tree
	doc    dom.Document
	hist   history.Stack
	logger *slog.Logger

	middlewares  []Middleware
	maxRedirects int
	notFound     route.Handler
	scope        string

	// generation stamps each navigation; any observer holding an older
	// stamp abandons before touching the document.
	generation atomic.Uint64

	// inFlight is nonzero while a navigation runs. Bind drops
	// browser-driven events during that window.
	inFlight atomic.Int32

	idSeq atomic.Uint64

	mu            sync.Mutex
	currentPath   *route.MatchResult
	redirectCount int
	outlets       map[int]outletRef
	links         []linkRef
	unbind        func()

	params   *reactive.Signal[map[string]string]
	location *reactive.Signal[string]

	stats statsCollector
}

// New compiles the route records and returns a ready Router. The router
// renders nothing until Bind or an explicit navigation call.
func New(opts Options) (*Router, error) {
	if opts.Document == nil {
		return nil, errors.New("N003").WithDetail("Options.Document is nil")
	}
	if opts.History == nil {
		return nil, errors.New("N003").WithDetail("Options.History is nil")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tree, err := route.NewTree(opts.Routes, route.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}

	return &Router{
		tree:         tree,
		doc:          opts.Document,
		hist:         opts.History,
		logger:       logger,
		middlewares:  opts.Middlewares,
		maxRedirects: maxRedirects,
		notFound:     opts.NotFound,
		scope:        fmt.Sprintf("viaduct-%d", scopeSeq.Add(1)),
		outlets:      make(map[int]outletRef),
		params:       reactive.NewSignal(map[string]string{}),
		location:     reactive.NewSignal(""),
	}, nil
}

// Tree returns the compiled route tree.
func (r *Router) Tree() *route.Tree { return r.tree }

// Registry returns the handler registry backing this router's tree.
func (r *Router) Registry() *route.Registry { return r.tree.Registry() }

// Document returns the document this router renders into.
func (r *Router) Document() dom.Document { return r.doc }

// History returns the history stack this router is bound to.
func (r *Router) History() history.Stack { return r.hist }

// Scope returns the attribute value tying this router's elements to it.
func (r *Router) Scope() string { return r.scope }

// CurrentPath returns the last settled match result, or nil before the
// first successful load.
func (r *Router) CurrentPath() *route.MatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentPath
}

// Params is the reactive view of the current path parameters. It
// publishes as soon as a navigation matches, before middleware runs, so
// live components see fresh params even when the navigation later
// redirects.
func (r *Router) Params() *reactive.Signal[map[string]string] { return r.params }

// Location is the reactive view of the settled full path. It publishes
// only when a navigation settles.
func (r *Router) Location() *reactive.Signal[string] { return r.location }

// Stats returns a snapshot of the router's navigation counters.
func (r *Router) Stats() Stats { return r.stats.snapshot() }

// ResetStats zeroes the navigation counters.
func (r *Router) ResetStats() { r.stats.reset() }

// Navigate loads path and pushes a history entry when it settles.
// Soft failures (no match, redirect budget exhausted) render their
// fallback and return nil; middleware, metadata and lazy-load errors
// propagate.
func (r *Router) Navigate(ctx context.Context, path string) error {
	if path == "#" {
		return nil
	}
	_, err := r.load(ctx, path, historyPush, false)
	return err
}

// Replace loads path and replaces the current history entry when it
// settles.
func (r *Router) Replace(ctx context.Context, path string) error {
	if path == "#" {
		return nil
	}
	_, err := r.load(ctx, path, historyReplace, false)
	return err
}

// Back asks the history stack to move back one entry. The traversal
// event flows through Bind, which re-runs matching for the entry.
func (r *Router) Back() { r.hist.Back() }

// Forward asks the history stack to move forward one entry.
func (r *Router) Forward() { r.hist.Forward() }

// LoadPath drives one navigation without involving Back/Forward. It
// reports whether the navigation loaded: false means a newer navigation
// superseded it, a redirect re-entered, or the redirect budget aborted
// the chain. History is pushed only when push is true and the load
// settled.
func (r *Router) LoadPath(ctx context.Context, path string, push bool) (bool, error) {
	mode := historyNone
	if push {
		mode = historyPush
	}
	return r.load(ctx, path, mode, false)
}

// Refresh re-renders the settled path from scratch, ignoring the
// per-outlet skip optimization. The dev server calls this after
// hot-swapping a component.
func (r *Router) Refresh(ctx context.Context) error {
	current := r.CurrentPath()
	path := r.hist.Current()
	if current != nil {
		path = current.FullPath
	}
	if path == "" {
		return nil
	}

	r.mu.Lock()
	outlets := make([]outletRef, 0, len(r.outlets))
	for _, ref := range r.outlets {
		outlets = append(outlets, ref)
	}
	r.mu.Unlock()
	for _, ref := range outlets {
		if el, ok := r.doc.ByID(ref.elementID); ok {
			el.RemoveAttr(attrOutletPath)
		}
	}

	_, err := r.load(ctx, path, historyNone, true)
	return err
}

// Bind subscribes the router to its history stack. The subscription
// immediately replays the current entry, rendering the first screen.
// Browser-driven events arriving while a navigation is already running
// are dropped; programmatic calls are never blocked. Bind is idempotent;
// the returned cancel tears the subscription down.
func (r *Router) Bind(ctx context.Context) (cancel func()) {
	r.mu.Lock()
	if r.unbind != nil {
		existing := r.unbind
		r.mu.Unlock()
		return existing
	}
	r.mu.Unlock()

	raw := r.hist.Subscribe(func(ev history.Event) {
		if r.inFlight.Load() > 0 {
			r.logger.Warn("dropping history event during navigation",
				"kind", ev.Kind.String(), "path", ev.Path)
			return
		}
		if _, err := r.load(ctx, ev.Path, historyNone, false); err != nil {
			r.logger.Error("history navigation failed",
				"kind", ev.Kind.String(), "path", ev.Path, "error", err)
		}
	})

	cancel = func() {
		r.mu.Lock()
		r.unbind = nil
		r.mu.Unlock()
		raw()
	}

	r.mu.Lock()
	r.unbind = cancel
	r.mu.Unlock()
	return cancel
}

func (r *Router) nextElementID(kind string) string {
	return fmt.Sprintf("%s-%s-%d", r.scope, kind, r.idSeq.Add(1))
}
