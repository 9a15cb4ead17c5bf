package route

import (
	"context"
	"testing"

	"github.com/viaduct-dev/viaduct/pkg/vdom"
)

func TestRegistryInstall(t *testing.T) {
	tree := build(t, []Record{{Path: "/home", Component: page}})
	rt := tree.Roots()[0]
	reg := tree.Registry()

	swapped := func(Ctx) *vdom.VNode { return vdom.Span() }
	reg.Install(rt.ID(), swapped)

	h, err := reg.Resolve(context.Background(), rt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h == nil || h(nil).Tag != "span" {
		t.Error("override should win over the static handler")
	}

	reg.Remove(rt.ID())
	h, err = reg.Resolve(context.Background(), rt)
	if err != nil {
		t.Fatalf("Resolve after remove: %v", err)
	}
	if h == nil || h(nil).Tag != "div" {
		t.Error("removing the override should restore the static handler")
	}
}

func TestRegistryInstallNilRemoves(t *testing.T) {
	reg := NewRegistry()
	reg.Install("/x", page)
	reg.Install("/x", nil)

	if _, ok := reg.Lookup("/x"); ok {
		t.Error("installing nil should drop the override")
	}
}

func TestRegistryResolveLazy(t *testing.T) {
	loads := 0
	tree := build(t, []Record{{
		Path: "/lazy",
		Lazy: Lazy(func(context.Context) (Handler, error) {
			loads++
			return page, nil
		}),
	}})
	rt := tree.Roots()[0]
	reg := tree.Registry()

	h, err := reg.Resolve(context.Background(), rt)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if h == nil {
		t.Fatal("lazy handler should resolve")
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}

	// An override bypasses the lazy loader entirely.
	reg.Install(rt.ID(), page)
	if _, err := reg.Resolve(context.Background(), rt); err != nil {
		t.Fatalf("Resolve with override: %v", err)
	}
	if loads != 1 {
		t.Errorf("loads after override = %d, want still 1", loads)
	}
}

func TestRegistryHas(t *testing.T) {
	tree := build(t, []Record{
		{Path: "/static", Component: page},
		{Path: "/lazy", Lazy: Lazy(func(context.Context) (Handler, error) { return page, nil })},
		{Path: "/bare", Children: []Record{{Path: "x", Component: page}}},
	})
	reg := tree.Registry()

	tests := []struct {
		pattern string
		want    bool
	}{
		{"/static", true},
		{"/lazy", true},
		{"/bare", false},
	}
	for _, tt := range tests {
		rt, ok := tree.ByID(ID(tt.pattern))
		if !ok {
			t.Fatalf("ByID(%q) missing", tt.pattern)
		}
		if got := reg.Has(rt); got != tt.want {
			t.Errorf("Has(%s) = %v, want %v", tt.pattern, got, tt.want)
		}
	}

	// Installing onto a bare grouping route gives it a component.
	bare, _ := tree.ByID("/bare")
	reg.Install(bare.ID(), page)
	if !reg.Has(bare) {
		t.Error("Has should see installed overrides")
	}
}
