package middleware

import (
	"context"

	"github.com/viaduct-dev/viaduct/pkg/router"
)

// internalNav builds an in-app navigation from "/" to the given target.
func internalNav(pattern, fullPath string) router.Navigation {
	return router.Navigation{
		From: &router.RouteData{Pattern: "/", FullPath: "/"},
		To:   &router.RouteData{Pattern: pattern, FullPath: fullPath},
	}
}

// initialNav builds a first-load navigation to the given target.
func initialNav(pattern, fullPath string) router.Navigation {
	return router.Navigation{
		To: &router.RouteData{Pattern: pattern, FullPath: fullPath},
	}
}

// allow is a middleware that lets every navigation through.
func allow() router.Middleware {
	return router.MiddlewareFunc(func(context.Context, router.Navigation) (*router.Redirect, error) {
		return nil, nil
	})
}
