// Package viaduct provides the public API for the Viaduct navigation
// engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/viaduct-dev/viaduct"
//
// Usage:
//
//	app, err := viaduct.New(viaduct.Config{
//	    Title: "Demo",
//	    Routes: []viaduct.Record{
//	        {Path: "/", Component: Home, Children: []viaduct.Record{
//	            {Path: "users/:id", Component: UserPage},
//	        }},
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer app.Close()
//
//	app.Start(context.Background())
//	app.Navigate(context.Background(), "/users/42")
package viaduct

import (
	"context"
	"log/slog"
	"sync"

	"github.com/viaduct-dev/viaduct/pkg/dom"
	"github.com/viaduct-dev/viaduct/pkg/history"
	"github.com/viaduct-dev/viaduct/pkg/route"
	"github.com/viaduct-dev/viaduct/pkg/router"
	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// Config wires one application together. Only Routes is required; the
// zero value of everything else yields an in-memory document and history
// stack, which is what tests and server-side rendering want.
type Config struct {
	// Routes is the application's route record forest.
	Routes []route.Record

	// Middlewares run in order before each navigation renders.
	Middlewares []router.Middleware

	// MaxRedirects bounds each redirect chain. Defaults to
	// router.DefaultMaxRedirects.
	MaxRedirects int

	// Document is the render target. Defaults to an in-memory document.
	Document dom.Document

	// History is the session history. Defaults to an in-memory stack
	// rooted at "/".
	History history.Stack

	// Logger receives navigation diagnostics.
	Logger *slog.Logger

	// Title is the initial document title.
	Title string

	// NotFound renders when no route matches.
	NotFound route.Handler

	// Shell builds the application body mounted under the document root.
	// It receives the router so it can place outlets and links. When nil
	// the body is a single depth-0 outlet.
	Shell func(*router.Router) *vdom.VNode
}

// App owns a router, its document, and its history binding.
type App struct {
	router *router.Router
	doc    dom.Document
	hist   history.Stack

	mu     sync.Mutex
	unbind func()
}

// New builds the application: it compiles the routes, mounts the shell
// under the document root, and returns the ready App. Nothing renders
// until Start or an explicit navigation call.
func New(cfg Config) (*App, error) {
	doc := cfg.Document
	if doc == nil {
		doc = dom.NewMemoryDocument()
	}
	hist := cfg.History
	if hist == nil {
		hist = history.NewMemory("/")
	}

	r, err := router.New(router.Options{
		Routes:       cfg.Routes,
		Middlewares:  cfg.Middlewares,
		MaxRedirects: cfg.MaxRedirects,
		Document:     doc,
		History:      hist,
		Logger:       cfg.Logger,
		NotFound:     cfg.NotFound,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Title != "" {
		doc.SetTitle(cfg.Title)
	}

	body := r.Outlet(0)
	if cfg.Shell != nil {
		body = cfg.Shell(r)
	}
	// The shell must be in the document before the first load runs:
	// outlet and link registrations are pruned against the live tree.
	doc.Root().Append(dom.Materialize(doc, body)...)

	return &App{router: r, doc: doc, hist: hist}, nil
}

// Start binds the router to the history stack, which replays the current
// entry and renders the first screen. Start is idempotent.
func (a *App) Start(ctx context.Context) {
	cancel := a.router.Bind(ctx)
	a.mu.Lock()
	a.unbind = cancel
	a.mu.Unlock()
}

// Close releases the history subscription. The app can be restarted
// with Start.
func (a *App) Close() {
	a.mu.Lock()
	unbind := a.unbind
	a.unbind = nil
	a.mu.Unlock()
	if unbind != nil {
		unbind()
	}
}

// Router returns the navigation engine.
func (a *App) Router() *router.Router { return a.router }

// Document returns the document the app renders into.
func (a *App) Document() dom.Document { return a.doc }

// History returns the app's history stack.
func (a *App) History() history.Stack { return a.hist }

// Navigate loads path and pushes a history entry when it settles.
func (a *App) Navigate(ctx context.Context, path string) error {
	return a.router.Navigate(ctx, path)
}

// Replace loads path and replaces the current history entry.
func (a *App) Replace(ctx context.Context, path string) error {
	return a.router.Replace(ctx, path)
}

// Back moves back one history entry.
func (a *App) Back() { a.router.Back() }

// Forward moves forward one history entry.
func (a *App) Forward() { a.router.Forward() }

// CurrentPath returns the last settled match result, or nil before the
// first load.
func (a *App) CurrentPath() *route.MatchResult { return a.router.CurrentPath() }
