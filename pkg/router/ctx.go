package router

import (
	"context"
	"net/url"

	"github.com/viaduct-dev/viaduct/pkg/route"
)

// renderCtx is the route.Ctx handed to components during an outlet walk.
// Path is the render path of the level being drawn; everything else comes
// from the match result the walk is rendering.
type renderCtx struct {
	ctx    context.Context
	result *route.MatchResult
	path   string
}

func (c *renderCtx) Context() context.Context { return c.ctx }

func (c *renderCtx) Path() string { return c.path }

func (c *renderCtx) FullPath() string { return c.result.FullPath }

func (c *renderCtx) Param(name string) string { return c.result.Params[name] }

func (c *renderCtx) Params() map[string]string { return c.result.Params }

func (c *renderCtx) Query() url.Values { return c.result.Query }

func (c *renderCtx) Hash() string { return c.result.Hash }

func (c *renderCtx) Metadata() map[string]any { return c.result.Metadata }
