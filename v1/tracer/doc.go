// Package tracer builds the OpenTelemetry tracer used to record request spans.
//
// A Tracer bundles an otel TracerProvider, the propagator for the configured
// header formats, and the service identity (name, version, environment) that
// ends up on every exported span:
//
//	t, err := tracer.NewClient(tracer.Config{
//		ServiceName:  "edge",
//		AppEnv:       "production",
//		EnableExport: true,
//		Endpoint:     "http://collector:4318/v1/traces",
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer t.Shutdown(ctx)
//
//	ctx, span := t.StartSpan(ctx, "GET /index.html HTTP/1.1")
//	defer span.End()
//
// # Propagation
//
// Extract and Inject move span contexts through any propagation.TextMapCarrier;
// for HTTP headers use propagation.HeaderCarrier:
//
//	ctx = t.Extract(ctx, propagation.HeaderCarrier(r.Header))
//	if trace.SpanContextFromContext(ctx).IsValid() {
//		// the caller sent a traceparent header
//	}
//
// GetCarrier and SetCarrierOnContext do the same with plain maps, for message
// headers and similar.
//
// # Version string
//
// When ServiceVersion is empty the version reported is DerivedVersion(), e.g.
// "reqtraced v1.4.0 (go1.25.4)".
//
// # Worker lifecycle
//
// The host server constructs one Tracer per worker from its initialization
// hook. Factory defers construction to that point and remembers what it built,
// so the fx lifecycle can shut every tracer down on stop:
//
//	app := fx.New(
//		fx.Supply(cfg.Tracer),
//		tracer.FXModule,
//	)
//
// All methods on Tracer and Factory are safe for concurrent use.
package tracer
