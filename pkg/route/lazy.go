package route

import (
	"context"
	"sync"

	"github.com/viaduct-dev/viaduct/internal/errors"
)

// LazyHandler defers component construction until the first navigation
// that renders the route.
type LazyHandler struct {
	mu     sync.Mutex
	load   func(context.Context) (Handler, error)
	cached Handler
}

// Lazy wraps a loader invoked on first activation of the route.
func Lazy(load func(ctx context.Context) (Handler, error)) *LazyHandler {
	return &LazyHandler{load: load}
}

// Resolve returns the loaded handler, invoking the loader on first use.
// A successful load is cached for the lifetime of the handle; a failed
// load is not, so the next navigation retries it.
func (l *LazyHandler) Resolve(ctx context.Context) (Handler, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cached != nil {
		return l.cached, nil
	}
	h, err := l.load(ctx)
	if err != nil {
		return nil, errors.New("R005").Wrap(err)
	}
	if h == nil {
		return nil, errors.New("R005").WithDetail("loader returned no handler")
	}
	l.cached = h
	return h, nil
}
