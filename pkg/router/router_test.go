package router

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	viaerrors "github.com/viaduct-dev/viaduct/internal/errors"
	"github.com/viaduct-dev/viaduct/pkg/dom"
	"github.com/viaduct-dev/viaduct/pkg/history"
	"github.com/viaduct-dev/viaduct/pkg/route"
	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

// newTestRouter builds a router over a fresh in-memory document and
// history stack starting at "/".
func newTestRouter(t *testing.T, opts Options) (*Router, *dom.MemoryDocument, *history.Memory) {
	t.Helper()
	doc := dom.NewMemoryDocument()
	hist := history.NewMemory("/")
	opts.Document = doc
	opts.History = hist
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, doc, hist
}

// mountOutlet materializes an outlet for depth and attaches it to the
// document root.
func mountOutlet(t *testing.T, r *Router, doc *dom.MemoryDocument, depth int) dom.Element {
	t.Helper()
	els := dom.Materialize(doc, r.Outlet(depth))
	if len(els) != 1 {
		t.Fatalf("Outlet(%d) materialized %d elements, want 1", depth, len(els))
	}
	doc.Root().Append(els...)
	return els[0]
}

func textPage(label string) route.Handler {
	return func(route.Ctx) *vdom.VNode { return vdom.Div(vdom.Text(label)) }
}

func countPage(label string, renders *int) route.Handler {
	return func(route.Ctx) *vdom.VNode {
		*renders++
		return vdom.Div(vdom.Text(label))
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{History: history.NewMemory("/")})
	if err == nil {
		t.Fatal("New() without document, want error")
	}
	_, err = New(Options{Document: dom.NewMemoryDocument()})
	if err == nil {
		t.Fatal("New() without history, want error")
	}
	var verr *viaerrors.Error
	if !stderrors.As(err, &verr) || verr.Code != "N003" {
		t.Errorf("New() error = %v, want code N003", err)
	}
}

func TestNewRejectsBadRoutes(t *testing.T) {
	_, err := New(Options{
		Routes:   []route.Record{{Path: "/users/:"}},
		Document: dom.NewMemoryDocument(),
		History:  history.NewMemory("/"),
	})
	if err == nil {
		t.Fatal("New() with empty param name, want error")
	}
}

func TestNavigateRendersLeaf(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
		{Path: "/about", Component: textPage("about")},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/about"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	if got := outlet.Text(); got != "about" {
		t.Errorf("outlet text = %q, want %q", got, "about")
	}
	if got, _ := outlet.Attr("data-outlet-path"); got != "/about" {
		t.Errorf("outlet path tag = %q, want %q", got, "/about")
	}
	if got := r.CurrentPath().FullPath; got != "/about" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/about")
	}
	if got := r.Location().Get(); got != "/about" {
		t.Errorf("Location() = %q, want %q", got, "/about")
	}
	if got := hist.Current(); got != "/about" {
		t.Errorf("history current = %q, want %q", got, "/about")
	}
}

func TestNavigateNestedChain(t *testing.T) {
	var r *Router
	records := []route.Record{{
		Path:  "/users/:id",
		Title: "User",
		Component: func(ctx route.Ctx) *vdom.VNode {
			return vdom.Div(vdom.Textf("user %s", ctx.Param("id")), r.Outlet(1))
		},
		Children: []route.Record{
			{Path: "posts", Title: "Posts", Component: textPage("posts")},
		},
	}}
	r, doc, _ := newTestRouter(t, Options{Routes: records})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/users/7/posts"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	text := outlet.Text()
	for _, want := range []string{"user 7", "posts"} {
		if !strings.Contains(text, want) {
			t.Errorf("outlet text = %q, missing %q", text, want)
		}
	}
	if got := doc.Title(); got != "Posts" {
		t.Errorf("document title = %q, want %q", got, "Posts")
	}
	if got := r.Params().Get()["id"]; got != "7" {
		t.Errorf("params id = %q, want %q", got, "7")
	}
	if got := r.CurrentPath().FullPath; got != "/users/7/posts" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/users/7/posts")
	}
}

func TestNavigateIdempotent(t *testing.T) {
	renders := 0
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/about", Component: countPage("about", &renders)},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/about"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	entries := len(hist.Entries())

	// Same path, and the same path in a non-canonical spelling.
	for _, path := range []string{"/about", "/about/", "/about/."} {
		loaded, err := r.LoadPath(ctx, path, true)
		if err != nil || !loaded {
			t.Fatalf("LoadPath(%q) = (%v, %v), want (true, nil)", path, loaded, err)
		}
	}

	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got := len(hist.Entries()); got != entries {
		t.Errorf("history entries = %d, want %d", got, entries)
	}
}

func TestNavigateParamChangeSkipsRender(t *testing.T) {
	renders := 0
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/users/:id", Component: countPage("user", &renders)},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/users/1"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := r.Navigate(ctx, "/users/2"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	// The render path is the same for both ids, so the outlet keeps its
	// content and the params signal carries the change.
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got := r.Params().Get()["id"]; got != "2" {
		t.Errorf("params id = %q, want %q", got, "2")
	}
	if got := r.CurrentPath().FullPath; got != "/users/2" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/users/2")
	}
}

func TestNavigateWildcardChangeRerenders(t *testing.T) {
	renders := 0
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/files/*", Component: countPage("file", &renders)},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/files/a.txt"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := r.Navigate(ctx, "/files/b.txt"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	// Wildcard segments are substituted into the render path, so the two
	// paths render separately.
	if renders != 2 {
		t.Errorf("renders = %d, want 2", renders)
	}
}

func TestNavigateHashChange(t *testing.T) {
	renders := 0
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/about", Component: countPage("about", &renders)},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/about"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := r.Navigate(ctx, "/about#team"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got := r.CurrentPath().FullPath; got != "/about#team" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/about#team")
	}
	if got := r.CurrentPath().Hash; got != "team" {
		t.Errorf("CurrentPath().Hash = %q, want %q", got, "team")
	}
}

func TestNavigateHashOnlyNoop(t *testing.T) {
	r, _, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
	}})

	if err := r.Navigate(context.Background(), "#"); err != nil {
		t.Fatalf("Navigate(\"#\") error = %v", err)
	}
	if got := r.Stats().NavigationsStarted; got != 0 {
		t.Errorf("NavigationsStarted = %d, want 0", got)
	}
	if got := len(hist.Entries()); got != 1 {
		t.Errorf("history entries = %d, want 1", got)
	}
}

func TestNotFound(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	loaded, err := r.LoadPath(context.Background(), "/missing/page", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if !loaded {
		t.Error("LoadPath() loaded = false, want true")
	}
	if got, want := outlet.Text(), "Route not found: /missing/page"; got != want {
		t.Errorf("outlet text = %q, want %q", got, want)
	}
	if got := hist.Current(); got != "/missing/page" {
		t.Errorf("history current = %q, want %q", got, "/missing/page")
	}
	if r.CurrentPath() != nil {
		t.Errorf("CurrentPath() = %v, want nil", r.CurrentPath())
	}
	if got := r.Stats().NotFoundRenders; got != 1 {
		t.Errorf("NotFoundRenders = %d, want 1", got)
	}
}

func TestNotFoundKeepsLastSettledPath(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/about", Component: textPage("about")},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/about"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := r.Navigate(ctx, "/gone"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	// The placeholder renders but the settled path intentionally stays
	// at the last successful load.
	if got, want := outlet.Text(), "Route not found: /gone"; got != want {
		t.Errorf("outlet text = %q, want %q", got, want)
	}
	if got := r.CurrentPath().FullPath; got != "/about" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/about")
	}
}

func TestNotFoundCustomView(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{
		Routes: []route.Record{{Path: "/", Component: textPage("home")}},
		NotFound: func(ctx route.Ctx) *vdom.VNode {
			return vdom.H1(vdom.Textf("lost at %s", ctx.Path()))
		},
	})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/nope"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got, want := outlet.Text(), "lost at /nope"; got != want {
		t.Errorf("outlet text = %q, want %q", got, want)
	}
}

func TestNotFoundWithoutOutlet(t *testing.T) {
	r, _, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
	}})

	loaded, err := r.LoadPath(context.Background(), "/nope", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if !loaded {
		t.Error("LoadPath() loaded = false, want true")
	}
	if got := hist.Current(); got != "/nope" {
		t.Errorf("history current = %q, want %q", got, "/nope")
	}
}

func TestMiddlewareRedirect(t *testing.T) {
	guard := MiddlewareFunc(func(_ context.Context, nav Navigation) (*Redirect, error) {
		if strings.HasPrefix(nav.To.FullPath, "/admin") {
			return &Redirect{To: "/login"}, nil
		}
		return nil, nil
	})
	r, doc, hist := newTestRouter(t, Options{
		Routes: []route.Record{
			{Path: "/admin", Component: textPage("admin")},
			{Path: "/login", Component: textPage("login")},
		},
		Middlewares: []Middleware{guard},
	})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/admin"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	if got := outlet.Text(); got != "login" {
		t.Errorf("outlet text = %q, want %q", got, "login")
	}
	if got := r.CurrentPath().FullPath; got != "/login" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/login")
	}
	if want := []string{"/", "/login"}; !reflect.DeepEqual(hist.Entries(), want) {
		t.Errorf("history entries = %v, want %v", hist.Entries(), want)
	}
	if got := r.Stats().RedirectsFollowed; got != 1 {
		t.Errorf("RedirectsFollowed = %d, want 1", got)
	}
	// A one-hop chain settles with its budget fully repaid.
	if r.redirectCount != 0 {
		t.Errorf("redirectCount = %d, want 0", r.redirectCount)
	}
}

func TestMiddlewareSequentialOrder(t *testing.T) {
	var calls []string
	record := func(name string) Middleware {
		return MiddlewareFunc(func(_ context.Context, nav Navigation) (*Redirect, error) {
			calls = append(calls, name+" "+nav.To.FullPath)
			if name == "guard" && nav.To.FullPath == "/admin" {
				return &Redirect{To: "/login"}, nil
			}
			return nil, nil
		})
	}
	r, doc, _ := newTestRouter(t, Options{
		Routes: []route.Record{
			{Path: "/admin", Component: textPage("admin")},
			{Path: "/login", Component: textPage("login")},
		},
		Middlewares: []Middleware{record("guard"), record("audit")},
	})
	mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/admin"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	// The redirect skips the rest of the pipeline for /admin; the whole
	// pipeline re-runs for /login.
	want := []string{"guard /admin", "guard /login", "audit /login"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("middleware calls = %v, want %v", calls, want)
	}
}

func TestMiddlewareSamePathRedirectContinues(t *testing.T) {
	afterRan := false
	bounce := MiddlewareFunc(func(_ context.Context, nav Navigation) (*Redirect, error) {
		return &Redirect{To: nav.To.FullPath}, nil
	})
	after := MiddlewareFunc(func(context.Context, Navigation) (*Redirect, error) {
		afterRan = true
		return nil, nil
	})
	r, doc, _ := newTestRouter(t, Options{
		Routes:      []route.Record{{Path: "/about", Component: textPage("about")}},
		Middlewares: []Middleware{bounce, after},
	})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/about"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	if !afterRan {
		t.Error("middleware after the ignored redirect did not run")
	}
	if got := outlet.Text(); got != "about" {
		t.Errorf("outlet text = %q, want %q", got, "about")
	}
	if got := r.Stats().RedirectsFollowed; got != 0 {
		t.Errorf("RedirectsFollowed = %d, want 0", got)
	}
}

func TestMiddlewareErrorAborts(t *testing.T) {
	boom := stderrors.New("session check failed")
	deny := MiddlewareFunc(func(context.Context, Navigation) (*Redirect, error) {
		return nil, boom
	})
	r, doc, _ := newTestRouter(t, Options{
		Routes:      []route.Record{{Path: "/about", Component: textPage("about")}},
		Middlewares: []Middleware{deny},
	})
	outlet := mountOutlet(t, r, doc, 0)

	err := r.Navigate(context.Background(), "/about")
	if err == nil {
		t.Fatal("Navigate() error = nil, want middleware error")
	}
	if !stderrors.Is(err, boom) {
		t.Errorf("Navigate() error = %v, want wrapped %v", err, boom)
	}
	var verr *viaerrors.Error
	if !stderrors.As(err, &verr) || verr.Code != "N001" {
		t.Errorf("Navigate() error = %v, want code N001", err)
	}
	if r.CurrentPath() != nil {
		t.Errorf("CurrentPath() = %v, want nil", r.CurrentPath())
	}
	if got := outlet.Text(); got != "" {
		t.Errorf("outlet text = %q, want empty", got)
	}
}

func TestMiddlewareSkippedWithoutMatch(t *testing.T) {
	calls := 0
	mw := MiddlewareFunc(func(context.Context, Navigation) (*Redirect, error) {
		calls++
		return nil, nil
	})
	r, doc, _ := newTestRouter(t, Options{
		Routes:      []route.Record{{Path: "/", Component: textPage("home")}},
		Middlewares: []Middleware{mw},
	})
	mountOutlet(t, r, doc, 0)

	if _, err := r.LoadPath(context.Background(), "/nope", false); err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if calls != 0 {
		t.Errorf("middleware calls = %d, want 0", calls)
	}
}

func TestMiddlewareSeesFromAndTo(t *testing.T) {
	var froms []string
	mw := MiddlewareFunc(func(_ context.Context, nav Navigation) (*Redirect, error) {
		if nav.From == nil {
			froms = append(froms, "<nil>")
		} else {
			froms = append(froms, nav.From.FullPath)
		}
		return nil, nil
	})
	r, doc, _ := newTestRouter(t, Options{
		Routes: []route.Record{
			{Path: "/a", Component: textPage("a")},
			{Path: "/b", Component: textPage("b")},
		},
		Middlewares: []Middleware{mw},
	})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/a"); err != nil {
		t.Fatalf("Navigate(/a) error = %v", err)
	}
	if err := r.Navigate(ctx, "/b"); err != nil {
		t.Fatalf("Navigate(/b) error = %v", err)
	}

	want := []string{"<nil>", "/a"}
	if !reflect.DeepEqual(froms, want) {
		t.Errorf("middleware From values = %v, want %v", froms, want)
	}
}

func TestRedirectBudgetAborts(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{
		Routes: []route.Record{
			{Path: "/ping", Redirect: "/pong"},
			{Path: "/pong", Redirect: "/ping"},
			{Path: "/home", Component: textPage("home")},
		},
		MaxRedirects: 3,
	})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	loaded, err := r.LoadPath(ctx, "/ping", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if loaded {
		t.Error("LoadPath() loaded = true, want false (aborted chain)")
	}
	if r.CurrentPath() != nil {
		t.Errorf("CurrentPath() = %v, want nil", r.CurrentPath())
	}
	if got := len(hist.Entries()); got != 1 {
		t.Errorf("history entries = %d, want 1 (nothing settled)", got)
	}
	if got := r.Stats().ChainsAborted; got != 1 {
		t.Errorf("ChainsAborted = %d, want 1", got)
	}
	if r.redirectCount != 0 {
		t.Errorf("redirectCount = %d, want 0 after abort", r.redirectCount)
	}

	// The router recovers after the abort.
	if err := r.Navigate(ctx, "/home"); err != nil {
		t.Fatalf("Navigate(/home) error = %v", err)
	}
	if got := outlet.Text(); got != "home" {
		t.Errorf("outlet text = %q, want %q", got, "home")
	}
}

func TestRedirectBudgetResidue(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/a", Redirect: "/b"},
		{Path: "/b", Redirect: "/c"},
		{Path: "/c", Component: textPage("c")},
	}})
	mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/a"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	if got := r.CurrentPath().FullPath; got != "/c" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/c")
	}
	// Settling repays one hop, so a two-hop chain leaves one behind.
	if r.redirectCount != 1 {
		t.Errorf("redirectCount = %d, want 1", r.redirectCount)
	}
	if got := r.Stats().RedirectsFollowed; got != 2 {
		t.Errorf("RedirectsFollowed = %d, want 2", got)
	}
}

func TestRedirectRouteWithoutComponent(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/protected", Redirect: "/login"},
		{Path: "/login", Component: textPage("login")},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	loaded, err := r.LoadPath(context.Background(), "/protected", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if loaded {
		t.Error("LoadPath() loaded = true, want false (redirected)")
	}
	if got := r.CurrentPath().FullPath; got != "/login" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/login")
	}
	if got := outlet.Text(); got != "login" {
		t.Errorf("outlet text = %q, want %q", got, "login")
	}
	if want := []string{"/", "/login"}; !reflect.DeepEqual(hist.Entries(), want) {
		t.Errorf("history entries = %v, want %v", hist.Entries(), want)
	}
}

func TestLeafRedirectAfterRender(t *testing.T) {
	renders := 0
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/old", Component: countPage("old", &renders), Redirect: "/new"},
		{Path: "/new", Component: textPage("new")},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	loaded, err := r.LoadPath(context.Background(), "/old", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if loaded {
		t.Error("LoadPath() loaded = true, want false (redirected)")
	}

	// The old page renders once, then the redirect takes over.
	if renders != 1 {
		t.Errorf("renders = %d, want 1", renders)
	}
	if got := outlet.Text(); got != "new" {
		t.Errorf("outlet text = %q, want %q", got, "new")
	}
	if got := r.CurrentPath().FullPath; got != "/new" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/new")
	}
}

func TestGroupWithRedirectDescendsToChild(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/legacy", Redirect: "/new", Children: []route.Record{
			{Path: "sub", Component: textPage("sub")},
		}},
		{Path: "/new", Component: textPage("new")},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	// A matched child outranks the parent's redirect.
	if err := r.Navigate(ctx, "/legacy/sub"); err != nil {
		t.Fatalf("Navigate(/legacy/sub) error = %v", err)
	}
	if got := outlet.Text(); got != "sub" {
		t.Errorf("outlet text = %q, want %q", got, "sub")
	}
	if got := r.Stats().RedirectsFollowed; got != 0 {
		t.Errorf("RedirectsFollowed = %d, want 0", got)
	}

	// Navigating to the group itself follows the redirect.
	if err := r.Navigate(ctx, "/legacy"); err != nil {
		t.Fatalf("Navigate(/legacy) error = %v", err)
	}
	if got := r.CurrentPath().FullPath; got != "/new" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/new")
	}
}

func TestTransientGroupConsumesNoOutlet(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Children: []route.Record{
			{Path: "docs", Component: textPage("docs")},
		}},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/docs"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}

	// The grouping level flattens away; docs lands at depth 0.
	if got := outlet.Text(); got != "docs" {
		t.Errorf("outlet text = %q, want %q", got, "docs")
	}
	if got, _ := outlet.Attr("data-outlet-path"); got != "/docs" {
		t.Errorf("outlet path tag = %q, want %q", got, "/docs")
	}
}

func TestSyncNavigationDuringRenderWins(t *testing.T) {
	var r *Router
	navigated := false
	records := []route.Record{
		{Path: "/start", Component: func(ctx route.Ctx) *vdom.VNode {
			if !navigated {
				navigated = true
				if err := r.Navigate(ctx.Context(), "/final"); err != nil {
					t.Errorf("nested Navigate() error = %v", err)
				}
			}
			return vdom.Div(vdom.Text("start"))
		}},
		{Path: "/final", Component: textPage("final")},
	}
	r, doc, hist := newTestRouter(t, Options{Routes: records})
	outlet := mountOutlet(t, r, doc, 0)

	loaded, err := r.LoadPath(context.Background(), "/start", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if loaded {
		t.Error("LoadPath() loaded = true, want false (superseded)")
	}

	// The re-entrant navigation owns the document.
	if got := outlet.Text(); got != "final" {
		t.Errorf("outlet text = %q, want %q", got, "final")
	}
	if got := r.CurrentPath().FullPath; got != "/final" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/final")
	}
	for _, e := range hist.Entries() {
		if e == "/start" {
			t.Errorf("history entries = %v, must not contain /start", hist.Entries())
		}
	}
	if got := r.Stats().StaleAbandoned; got == 0 {
		t.Error("StaleAbandoned = 0, want > 0")
	}
}

func TestBindInitialLoad(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	cancel := r.Bind(context.Background())
	defer cancel()

	// Subscribing replays the current entry, so the first screen renders
	// without an explicit Navigate.
	if got := outlet.Text(); got != "home" {
		t.Errorf("outlet text = %q, want %q", got, "home")
	}
	if got := r.CurrentPath().FullPath; got != "/" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/")
	}
}

func TestBindBackForward(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
		{Path: "/a", Component: textPage("a")},
		{Path: "/b", Component: textPage("b")},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	cancel := r.Bind(ctx)
	defer cancel()

	if err := r.Navigate(ctx, "/a"); err != nil {
		t.Fatalf("Navigate(/a) error = %v", err)
	}
	if err := r.Navigate(ctx, "/b"); err != nil {
		t.Fatalf("Navigate(/b) error = %v", err)
	}

	r.Back()
	if got := outlet.Text(); got != "a" {
		t.Errorf("after Back(): outlet text = %q, want %q", got, "a")
	}
	if got := r.CurrentPath().FullPath; got != "/a" {
		t.Errorf("after Back(): CurrentPath().FullPath = %q, want %q", got, "/a")
	}

	r.Forward()
	if got := outlet.Text(); got != "b" {
		t.Errorf("after Forward(): outlet text = %q, want %q", got, "b")
	}
}

func TestBindIdempotent(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	cancel1 := r.Bind(ctx)
	cancel2 := r.Bind(ctx)
	defer cancel2()
	_ = cancel1

	// Only the first Bind subscribed (and replayed the current entry).
	if got := r.Stats().NavigationsStarted; got != 1 {
		t.Errorf("NavigationsStarted = %d, want 1", got)
	}
}

func TestBindCancelStopsEvents(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
		{Path: "/a", Component: textPage("a")},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	cancel := r.Bind(ctx)
	if err := r.Navigate(ctx, "/a"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	cancel()

	hist.Back()
	if got := outlet.Text(); got != "a" {
		t.Errorf("outlet text after cancel+Back = %q, want %q (no re-render)", got, "a")
	}
}

func TestBindDropsEventsDuringNavigation(t *testing.T) {
	var hist *history.Memory
	records := []route.Record{
		{Path: "/", Component: textPage("home")},
		{Path: "/a", Component: textPage("a")},
		{Path: "/c", Component: func(route.Ctx) *vdom.VNode {
			// A history event arriving mid-navigation must be dropped.
			hist.Back()
			return vdom.Div(vdom.Text("c"))
		}},
	}
	r, doc, h := newTestRouter(t, Options{Routes: records})
	hist = h
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	cancel := r.Bind(ctx)
	defer cancel()

	if err := r.Navigate(ctx, "/a"); err != nil {
		t.Fatalf("Navigate(/a) error = %v", err)
	}
	if err := r.Navigate(ctx, "/c"); err != nil {
		t.Fatalf("Navigate(/c) error = %v", err)
	}

	if got := outlet.Text(); got != "c" {
		t.Errorf("outlet text = %q, want %q", got, "c")
	}
	if got := r.CurrentPath().FullPath; got != "/c" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/c")
	}
	// The traversal moved the cursor before the push, so the push
	// truncated the forward tail.
	if want := []string{"/", "/c"}; !reflect.DeepEqual(hist.Entries(), want) {
		t.Errorf("history entries = %v, want %v", hist.Entries(), want)
	}
}

func TestReplaceSwapsEntry(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/a", Component: textPage("a")},
		{Path: "/b", Component: textPage("b")},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/a"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := r.Replace(ctx, "/b"); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if want := []string{"/", "/b"}; !reflect.DeepEqual(hist.Entries(), want) {
		t.Errorf("history entries = %v, want %v", hist.Entries(), want)
	}
	if got := r.CurrentPath().FullPath; got != "/b" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/b")
	}
}

func TestBackOntoRedirectReplacesEntry(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
		{Path: "/promo", Redirect: "/sale"},
		{Path: "/sale", Component: textPage("sale")},
		{Path: "/about", Component: textPage("about")},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	// A stack recorded before "/promo" became a redirect.
	hist.Push("/promo")
	hist.Push("/about")

	cancel := r.Bind(ctx)
	defer cancel()

	r.Back()

	// The pop's redirect hop swaps the entry in place; the stack must
	// not grow.
	if want := []string{"/", "/sale", "/about"}; !reflect.DeepEqual(hist.Entries(), want) {
		t.Errorf("history entries = %v, want %v", hist.Entries(), want)
	}
	if got := hist.Current(); got != "/sale" {
		t.Errorf("history current = %q, want %q", got, "/sale")
	}
	if got := outlet.Text(); got != "sale" {
		t.Errorf("outlet text = %q, want %q", got, "sale")
	}
	if got := r.CurrentPath().FullPath; got != "/sale" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/sale")
	}
}

func TestReplaceOntoRedirectKeepsStackSize(t *testing.T) {
	r, doc, hist := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/a", Component: textPage("a")},
		{Path: "/promo", Redirect: "/sale"},
		{Path: "/sale", Component: textPage("sale")},
	}})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/a"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if err := r.Replace(ctx, "/promo"); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}

	if want := []string{"/", "/sale"}; !reflect.DeepEqual(hist.Entries(), want) {
		t.Errorf("history entries = %v, want %v", hist.Entries(), want)
	}
	if got := r.CurrentPath().FullPath; got != "/sale" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/sale")
	}
}

func TestRefreshAfterHotSwap(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/widget", Component: textPage("v1")},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/widget"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := outlet.Text(); got != "v1" {
		t.Fatalf("outlet text = %q, want %q", got, "v1")
	}

	r.Registry().Install(route.ID("/widget"), textPage("v2"))

	// A plain re-navigation is an idempotent no-op.
	if err := r.Navigate(ctx, "/widget"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := outlet.Text(); got != "v1" {
		t.Errorf("outlet text after no-op = %q, want %q", got, "v1")
	}

	if err := r.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if got := outlet.Text(); got != "v2" {
		t.Errorf("outlet text after Refresh = %q, want %q", got, "v2")
	}
}

func TestTitleOnlySetByCarryingLevels(t *testing.T) {
	var r *Router
	records := []route.Record{{
		Path:  "/dash",
		Title: "Dash",
		Component: func(route.Ctx) *vdom.VNode {
			return vdom.Div(vdom.Text("dash"), r.Outlet(1))
		},
		Children: []route.Record{
			{Path: "reports", Title: "Reports", Component: textPage("reports")},
			{Path: "other", Component: textPage("other")},
		},
	}}
	r, doc, _ := newTestRouter(t, Options{Routes: records})
	mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/dash/reports"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := doc.Title(); got != "Reports" {
		t.Errorf("title = %q, want %q", got, "Reports")
	}

	// The sibling has no title of its own, so the document keeps the
	// last one set.
	if err := r.Navigate(ctx, "/dash/other"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := doc.Title(); got != "Reports" {
		t.Errorf("title = %q, want %q", got, "Reports")
	}
}

func TestWalkStopsWhenDepthUnregistered(t *testing.T) {
	// The layout renders no outlet for its child level; the child level
	// is skipped but the navigation still settles.
	records := []route.Record{{
		Path:      "/p",
		Component: textPage("p"),
		Children: []route.Record{
			{Path: "c", Component: textPage("c")},
		},
	}}
	r, doc, _ := newTestRouter(t, Options{Routes: records})
	outlet := mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/p/c"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := outlet.Text(); got != "p" {
		t.Errorf("outlet text = %q, want %q", got, "p")
	}
	if got := r.CurrentPath().FullPath; got != "/p/c" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/p/c")
	}
}

func TestMatchedLeafWithNothingToRender(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/bare"},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	loaded, err := r.LoadPath(context.Background(), "/bare", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if !loaded {
		t.Error("LoadPath() loaded = false, want true")
	}
	if got, want := outlet.Text(), "Route not found: /bare"; got != want {
		t.Errorf("outlet text = %q, want %q", got, want)
	}
	// Unlike a structural miss, a matched-but-empty leaf settles.
	if got := r.CurrentPath().FullPath; got != "/bare" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/bare")
	}
}

func TestLazyRouteRendersAndFailurePropagates(t *testing.T) {
	loads := 0
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/heavy", Lazy: route.Lazy(func(context.Context) (route.Handler, error) {
			loads++
			return textPage("heavy"), nil
		})},
		{Path: "/broken", Lazy: route.Lazy(func(context.Context) (route.Handler, error) {
			return nil, stderrors.New("chunk fetch failed")
		})},
	}})
	outlet := mountOutlet(t, r, doc, 0)
	ctx := context.Background()

	if err := r.Navigate(ctx, "/heavy"); err != nil {
		t.Fatalf("Navigate(/heavy) error = %v", err)
	}
	if got := outlet.Text(); got != "heavy" {
		t.Errorf("outlet text = %q, want %q", got, "heavy")
	}
	if loads != 1 {
		t.Errorf("lazy loads = %d, want 1", loads)
	}

	err := r.Navigate(ctx, "/broken")
	if err == nil {
		t.Fatal("Navigate(/broken) error = nil, want lazy failure")
	}
	var verr *viaerrors.Error
	if !stderrors.As(err, &verr) || verr.Code != "R005" {
		t.Errorf("Navigate(/broken) error = %v, want code R005", err)
	}
	// The failed walk leaves the previous content in place.
	if got := outlet.Text(); got != "heavy" {
		t.Errorf("outlet text = %q, want %q", got, "heavy")
	}
	if got := r.CurrentPath().FullPath; got != "/heavy" {
		t.Errorf("CurrentPath().FullPath = %q, want %q", got, "/heavy")
	}
}

func TestMetadataFlowsToComponents(t *testing.T) {
	var seen map[string]any
	records := []route.Record{{
		Path:     "/docs",
		Metadata: map[string]any{"section": "docs"},
		MetadataFunc: func(_ context.Context, info route.Info) (map[string]any, error) {
			return map[string]any{"query": info.Query.Get("q")}, nil
		},
		Component: func(ctx route.Ctx) *vdom.VNode {
			seen = ctx.Metadata()
			return vdom.Div(vdom.Text("docs"))
		},
	}}
	r, doc, _ := newTestRouter(t, Options{Routes: records})
	mountOutlet(t, r, doc, 0)

	if err := r.Navigate(context.Background(), "/docs?q=routing"); err != nil {
		t.Fatalf("Navigate() error = %v", err)
	}
	if got := seen["section"]; got != "docs" {
		t.Errorf("metadata section = %v, want %q", got, "docs")
	}
	if got := seen["query"]; got != "routing" {
		t.Errorf("metadata query = %v, want %q", got, "routing")
	}
}

func TestMetadataErrorAborts(t *testing.T) {
	records := []route.Record{{
		Path: "/docs",
		MetadataFunc: func(context.Context, route.Info) (map[string]any, error) {
			return nil, stderrors.New("lookup failed")
		},
		Component: textPage("docs"),
	}}
	r, doc, _ := newTestRouter(t, Options{Routes: records})
	outlet := mountOutlet(t, r, doc, 0)

	err := r.Navigate(context.Background(), "/docs")
	if err == nil {
		t.Fatal("Navigate() error = nil, want metadata error")
	}
	var verr *viaerrors.Error
	if !stderrors.As(err, &verr) || verr.Code != "N002" {
		t.Errorf("Navigate() error = %v, want code N002", err)
	}
	if got := outlet.Text(); got != "" {
		t.Errorf("outlet text = %q, want empty", got)
	}
}

func TestMalformedPathRendersNotFound(t *testing.T) {
	r, doc, _ := newTestRouter(t, Options{Routes: []route.Record{
		{Path: "/", Component: textPage("home")},
	}})
	outlet := mountOutlet(t, r, doc, 0)

	loaded, err := r.LoadPath(context.Background(), "/a\\b", true)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if !loaded {
		t.Error("LoadPath() loaded = false, want true")
	}
	if got, want := outlet.Text(), `Route not found: /a\b`; got != want {
		t.Errorf("outlet text = %q, want %q", got, want)
	}
}
