package middleware

import (
	"context"
	"fmt"

	"github.com/viaduct-dev/viaduct/pkg/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for Viaduct applications.
const defaultTracerName = "viaduct"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "viaduct").
	TracerName string

	// IncludeParams includes bound path parameters as span attributes.
	// May contain sensitive information - disabled by default.
	IncludeParams bool

	// Filter determines which navigations to trace.
	// Return true to trace the navigation, false to skip.
	// If nil, all navigations are traced.
	Filter func(nav router.Navigation) bool

	// AttributeExtractor extracts custom attributes from the navigation.
	// Called for each traced navigation.
	AttributeExtractor func(nav router.Navigation) []attribute.KeyValue

	// TracerProvider supplies the tracer. Defaults to the global
	// OpenTelemetry provider.
	TracerProvider trace.TracerProvider

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithIncludeParams enables including path parameters in traces.
func WithIncludeParams(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeParams = include
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(nav router.Navigation) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(nav router.Navigation) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(provider trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = provider
	}
}

// defaultOTelConfig returns the default OpenTelemetry configuration.
func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:    defaultTracerName,
		IncludeParams: false,
		Filter:        nil,
	}
}

// resolveOTelConfig applies options and resolves the tracer.
func resolveOTelConfig(opts []OTelOption) OTelConfig {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider != nil {
		config.tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		config.tracer = otel.Tracer(config.TracerName)
	}
	return config
}

// OpenTelemetry creates middleware that emits a span for every navigation
// decision the pipeline sees.
//
// Each span carries the route pattern, the full target path, the
// navigation kind, and the origin path. Redirect hops re-enter the
// pipeline and appear as separate spans.
//
// Example:
//
//	r, err := router.New(router.Options{
//	    Routes: routes,
//	    Middlewares: []router.Middleware{
//	        middleware.OpenTelemetry(
//	            middleware.WithTracerName("my-app"),
//	        ),
//	    },
//	    Document: doc,
//	    History:  hist,
//	})
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure the global provider in your
// main() before binding the app:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	    sdktrace.WithResource(resource.NewWithAttributes(
//	        semconv.SchemaURL,
//	        semconv.ServiceName("my-app"),
//	    )),
//	)
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) router.Middleware {
	config := resolveOTelConfig(opts)

	return router.MiddlewareFunc(func(ctx context.Context, nav router.Navigation) (*router.Redirect, error) {
		if config.Filter != nil && !config.Filter(nav) {
			return nil, nil
		}

		_, span := config.tracer.Start(
			ctx,
			fmt.Sprintf("navigate %s", routeLabel(nav)),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(navAttributes(config, nav)...),
		)
		span.SetStatus(codes.Ok, "")
		span.End()

		return nil, nil
	})
}

// Traced wraps a middleware in a span covering its Handle call. The span
// context is passed to the wrapped middleware, so spans it starts and
// outbound calls it makes become children of the middleware span:
//
//	middleware.Traced("auth", requireAuth)
//
//	func (g authGuard) Handle(ctx context.Context, nav router.Navigation) (*router.Redirect, error) {
//	    trace.SpanFromContext(ctx).SetAttributes(attribute.String("auth.user", id))
//	    ...
//	}
//
// Errors are recorded on the span; redirects are attached as the
// "viaduct.redirect" attribute.
func Traced(name string, mw router.Middleware, opts ...OTelOption) router.Middleware {
	config := resolveOTelConfig(opts)

	return router.MiddlewareFunc(func(ctx context.Context, nav router.Navigation) (*router.Redirect, error) {
		if config.Filter != nil && !config.Filter(nav) {
			return mw.Handle(ctx, nav)
		}

		attrs := append(navAttributes(config, nav), attribute.String("viaduct.middleware", name))
		spanCtx, span := config.tracer.Start(
			ctx,
			fmt.Sprintf("middleware %s", name),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		red, err := mw.Handle(spanCtx, nav)

		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case red != nil:
			span.SetAttributes(attribute.String("viaduct.redirect", red.To))
			span.SetStatus(codes.Ok, "")
		default:
			span.SetStatus(codes.Ok, "")
		}

		return red, err
	})
}

// navAttributes builds the span attributes for a navigation.
func navAttributes(config OTelConfig, nav router.Navigation) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("viaduct.route", routeLabel(nav)),
		attribute.String("viaduct.kind", navKind(nav)),
	}
	if nav.To != nil {
		attrs = append(attrs, attribute.String("viaduct.path", nav.To.FullPath))
		if nav.To.Name != "" {
			attrs = append(attrs, attribute.String("viaduct.route_name", nav.To.Name))
		}
		if config.IncludeParams {
			for name, value := range nav.To.Params {
				attrs = append(attrs, attribute.String("viaduct.param."+name, value))
			}
		}
	}
	if nav.From != nil {
		attrs = append(attrs, attribute.String("viaduct.from", nav.From.FullPath))
	}
	if config.AttributeExtractor != nil {
		attrs = append(attrs, config.AttributeExtractor(nav)...)
	}
	return attrs
}
