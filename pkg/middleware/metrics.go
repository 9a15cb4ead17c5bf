package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	viaerrors "github.com/viaduct-dev/viaduct/internal/errors"
	"github.com/viaduct-dev/viaduct/pkg/router"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "viaduct").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for middleware duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:   "viaduct",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for Viaduct navigations.
type metrics struct {
	navigationsTotal   *prometheus.CounterVec
	middlewareDuration *prometheus.HistogramVec
	middlewareOutcomes *prometheus.CounterVec
	middlewareErrors   *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance.
// Created on the first call to Prometheus() or Instrument().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		navigationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations seen by the middleware pipeline",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "kind"}),

		middlewareDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "middleware_duration_seconds",
			Help:        "Execution duration of instrumented middleware in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"middleware", "route"}),

		middlewareOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "middleware_outcomes_total",
			Help:        "Total middleware decisions by outcome (ok, redirect, error)",
			ConstLabels: config.ConstLabels,
		}, []string{"middleware", "route", "outcome"}),

		middlewareErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "middleware_errors_total",
			Help:        "Total middleware errors by framework error code",
			ConstLabels: config.ConstLabels,
		}, []string{"middleware", "route", "code"}),
	}
}

// acquireMetrics returns the singleton, initializing it on first use.
func acquireMetrics(config MetricsConfig) *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	return globalMetrics
}

// Prometheus creates middleware that counts every navigation the pipeline
// sees. Place it first so redirect hops re-entering the pipeline are
// counted as separate navigations.
//
// Metrics collected:
//   - viaduct_navigations_total: Counter of navigations by route pattern
//     and kind ("initial" for the first load, "internal" afterwards)
//
// The pipeline is sequential, so this middleware cannot time downstream
// rendering. Use Instrument to time individual middleware, and
// StatsCollector to export the router's own settle/redirect/abort
// counters.
//
// Example:
//
//	r, err := router.New(router.Options{
//	    Routes: routes,
//	    Middlewares: []router.Middleware{
//	        middleware.Prometheus(middleware.WithNamespace("myapp")),
//	    },
//	    Document: doc,
//	    History:  hist,
//	})
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) router.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	m := acquireMetrics(config)

	return router.MiddlewareFunc(func(ctx context.Context, nav router.Navigation) (*router.Redirect, error) {
		m.navigationsTotal.WithLabelValues(routeLabel(nav), navKind(nav)).Inc()
		return nil, nil
	})
}

// Instrument wraps a middleware so its execution is timed and its
// decisions counted.
//
// Metrics collected:
//   - viaduct_middleware_duration_seconds: Histogram of Handle duration
//     by middleware name and route pattern
//   - viaduct_middleware_outcomes_total: Counter of decisions by outcome
//   - viaduct_middleware_errors_total: Counter of errors by framework
//     error code ("internal" for errors without one)
//
// Example:
//
//	middleware.Instrument("auth", requireAuth)
func Instrument(name string, mw router.Middleware, opts ...MetricsOption) router.Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	m := acquireMetrics(config)

	return router.MiddlewareFunc(func(ctx context.Context, nav router.Navigation) (*router.Redirect, error) {
		route := routeLabel(nav)
		start := time.Now()

		red, err := mw.Handle(ctx, nav)

		m.middlewareDuration.WithLabelValues(name, route).Observe(time.Since(start).Seconds())

		outcome := "ok"
		switch {
		case err != nil:
			outcome = "error"
			m.middlewareErrors.WithLabelValues(name, route, errorCode(err)).Inc()
		case red != nil:
			outcome = "redirect"
		}
		m.middlewareOutcomes.WithLabelValues(name, route, outcome).Inc()

		return red, err
	})
}

// routeLabel returns a bounded-cardinality label for the navigation
// target. The route pattern is preferred; the full path only stands in
// when no pattern is known.
func routeLabel(nav router.Navigation) string {
	switch {
	case nav.To == nil:
		return "unknown"
	case nav.To.Pattern != "":
		return nav.To.Pattern
	case nav.To.FullPath != "":
		return nav.To.FullPath
	}
	return "/"
}

// navKind distinguishes the first load from in-app navigations.
func navKind(nav router.Navigation) string {
	if nav.From == nil {
		return "initial"
	}
	return "internal"
}

// errorCode returns the framework error code, or "internal" when the
// error does not carry one. Codes keep the label cardinality bounded
// where raw error messages would not.
func errorCode(err error) string {
	var verr *viaerrors.Error
	if errors.As(err, &verr) {
		return verr.Code
	}
	return "internal"
}

// =============================================================================
// Metrics Collector
// =============================================================================

// Collector exposes the initialized metrics for use in tests and custom
// registrations.
type Collector struct {
	navigationsTotal   *prometheus.CounterVec
	middlewareDuration *prometheus.HistogramVec
	middlewareOutcomes *prometheus.CounterVec
	middlewareErrors   *prometheus.CounterVec
}

// GetMetrics returns the global metrics collector.
// Returns nil if no metrics middleware has been initialized.
func GetMetrics() *Collector {
	if globalMetrics == nil {
		return nil
	}
	return &Collector{
		navigationsTotal:   globalMetrics.navigationsTotal,
		middlewareDuration: globalMetrics.middlewareDuration,
		middlewareOutcomes: globalMetrics.middlewareOutcomes,
		middlewareErrors:   globalMetrics.middlewareErrors,
	}
}

// =============================================================================
// Router Stats Collector
// =============================================================================

// statsCollector exports a router's internal counters as const metrics.
type statsCollector struct {
	router *router.Router

	navigationsStarted *prometheus.Desc
	loadsSettled       *prometheus.Desc
	redirectsFollowed  *prometheus.Desc
	chainsAborted      *prometheus.Desc
	notFoundRenders    *prometheus.Desc
	staleAbandoned     *prometheus.Desc
}

// StatsCollector returns a prometheus.Collector that reads the router's
// Stats() snapshot on every scrape. Register it on the registry backing
// your /metrics endpoint:
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(middleware.StatsCollector(r))
func StatsCollector(r *router.Router, opts ...MetricsOption) prometheus.Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	subsystem := config.Subsystem
	if subsystem == "" {
		subsystem = "router"
	}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(config.Namespace, subsystem, name),
			help, nil, config.ConstLabels,
		)
	}

	return &statsCollector{
		router:             r,
		navigationsStarted: desc("navigations_started_total", "Navigations the router began processing"),
		loadsSettled:       desc("loads_settled_total", "Navigations that settled and updated the current path"),
		redirectsFollowed:  desc("redirects_followed_total", "Redirect hops the router followed"),
		chainsAborted:      desc("chains_aborted_total", "Redirect chains aborted after exhausting the budget"),
		notFoundRenders:    desc("not_found_renders_total", "Not-found views rendered"),
		staleAbandoned:     desc("stale_generations_total", "Navigations abandoned because a newer one started"),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.navigationsStarted
	ch <- c.loadsSettled
	ch <- c.redirectsFollowed
	ch <- c.chainsAborted
	ch <- c.notFoundRenders
	ch <- c.staleAbandoned
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.router.Stats()
	ch <- prometheus.MustNewConstMetric(c.navigationsStarted, prometheus.CounterValue, float64(stats.NavigationsStarted))
	ch <- prometheus.MustNewConstMetric(c.loadsSettled, prometheus.CounterValue, float64(stats.LoadsSettled))
	ch <- prometheus.MustNewConstMetric(c.redirectsFollowed, prometheus.CounterValue, float64(stats.RedirectsFollowed))
	ch <- prometheus.MustNewConstMetric(c.chainsAborted, prometheus.CounterValue, float64(stats.ChainsAborted))
	ch <- prometheus.MustNewConstMetric(c.notFoundRenders, prometheus.CounterValue, float64(stats.NotFoundRenders))
	ch <- prometheus.MustNewConstMetric(c.staleAbandoned, prometheus.CounterValue, float64(stats.StaleAbandoned))
}
