// Package middleware provides observability middleware for Viaduct routers.
//
// This package includes:
//   - Prometheus metrics for navigations and individual guards
//   - OpenTelemetry tracing for navigations and individual guards
//   - A Prometheus collector exporting the router's internal counters
//
// # Prometheus metrics
//
// Prometheus() returns a middleware that counts every navigation the
// pipeline sees, labeled by route pattern and kind (initial or internal):
//
//	r, err := router.New(router.Options{
//	    Routes: routes,
//	    Middlewares: []router.Middleware{
//	        middleware.Prometheus(middleware.WithNamespace("myapp")),
//	        requireAuth,
//	    },
//	    Document: doc,
//	    History:  hist,
//	})
//
// Because the pipeline is sequential rather than a next-chain, the
// navigation middleware cannot time downstream work. Wrap the guards you
// want timed instead:
//
//	middleware.Instrument("auth", requireAuth)
//
// which records a duration histogram and outcome counters (ok, redirect,
// error) per guard and route pattern.
//
// StatsCollector bridges the router's internal counters to a Prometheus
// registry so the dev server's /metrics endpoint can expose them:
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(middleware.StatsCollector(r))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # OpenTelemetry tracing
//
// OpenTelemetry() emits a span per navigation decision with route, path,
// and kind attributes. Traced wraps a single guard in a child span and
// hands the span context to the guard, so downstream calls inherit it:
//
//	middleware.Traced("auth", requireAuth)
//
//	func (g authGuard) Handle(ctx context.Context, nav router.Navigation) (*router.Redirect, error) {
//	    span := trace.SpanFromContext(ctx)
//	    span.SetAttributes(attribute.String("auth.user", userID))
//	    ...
//	}
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure the global provider in main() before binding the app:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
package middleware
