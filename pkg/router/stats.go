package router

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the router's counters.
type Stats struct {
	// NavigationsStarted counts every entry into the navigation engine,
	// including no-ops and redirect hops.
	NavigationsStarted int64

	// LoadsSettled counts navigations that updated the current path.
	LoadsSettled int64

	// RedirectsFollowed counts redirect hops the router re-entered for.
	RedirectsFollowed int64

	// ChainsAborted counts navigations dropped because the redirect
	// budget was exhausted.
	ChainsAborted int64

	// NotFoundRenders counts placeholder renders for unmatched paths.
	NotFoundRenders int64

	// StaleAbandoned counts navigations abandoned because a newer one
	// superseded them mid-flight.
	StaleAbandoned int64

	// CollectedAt is when this snapshot was taken.
	CollectedAt time.Time
}

// statsCollector accumulates navigation counters. All methods are safe
// for concurrent use.
type statsCollector struct {
	navigationsStarted atomic.Int64
	loadsSettled       atomic.Int64
	redirectsFollowed  atomic.Int64
	chainsAborted      atomic.Int64
	notFoundRenders    atomic.Int64
	staleAbandoned     atomic.Int64
}

func (c *statsCollector) recordStart() {
	c.navigationsStarted.Add(1)
}

func (c *statsCollector) recordSettled() {
	c.loadsSettled.Add(1)
}

func (c *statsCollector) recordRedirect() {
	c.redirectsFollowed.Add(1)
}

func (c *statsCollector) recordAborted() {
	c.chainsAborted.Add(1)
}

func (c *statsCollector) recordNotFound() {
	c.notFoundRenders.Add(1)
}

func (c *statsCollector) recordStale() {
	c.staleAbandoned.Add(1)
}

// snapshot returns the current counter values.
func (c *statsCollector) snapshot() Stats {
	return Stats{
		NavigationsStarted: c.navigationsStarted.Load(),
		LoadsSettled:       c.loadsSettled.Load(),
		RedirectsFollowed:  c.redirectsFollowed.Load(),
		ChainsAborted:      c.chainsAborted.Load(),
		NotFoundRenders:    c.notFoundRenders.Load(),
		StaleAbandoned:     c.staleAbandoned.Load(),
		CollectedAt:        time.Now(),
	}
}

// reset zeroes all counters.
func (c *statsCollector) reset() {
	c.navigationsStarted.Store(0)
	c.loadsSettled.Store(0)
	c.redirectsFollowed.Store(0)
	c.chainsAborted.Store(0)
	c.notFoundRenders.Store(0)
	c.staleAbandoned.Store(0)
}
