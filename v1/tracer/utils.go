package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Config returns the configuration the Tracer was built with, defaults applied.
func (t *Tracer) Config() Config {
	return t.cfg
}

// Tracer returns the underlying otel tracer.
func (t *Tracer) Tracer() trace.Tracer {
	return t.tracer
}

// Propagator returns the propagator built from Config.Propagators.
func (t *Tracer) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

// StartSpan creates a span named name. It is a child of the span in ctx, if any.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// Extract reads a propagated span context from carrier and returns ctx
// carrying it. When carrier holds no valid context ctx is returned as is,
// which callers detect with trace.SpanContextFromContext(ctx).IsValid().
func (t *Tracer) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	return t.propagator.Extract(ctx, carrier)
}

// Inject writes the span context carried by ctx into carrier.
func (t *Tracer) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	t.propagator.Inject(ctx, carrier)
}

// RecordErrorOnSpan records err on span and marks the span as failed.
func (t *Tracer) RecordErrorOnSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes adds attributes to span. Supported value types are string,
// int, int64, float64 and bool; anything else is stored with fmt.Sprint.
func (t *Tracer) SetAttributes(span trace.Span, attrs map[string]interface{}) {
	if len(attrs) == 0 {
		return
	}

	attributes := make([]attribute.KeyValue, 0, len(attrs))

	for k, v := range attrs {
		switch val := v.(type) {
		case string:
			attributes = append(attributes, attribute.String(k, val))
		case int:
			attributes = append(attributes, attribute.Int(k, val))
		case int64:
			attributes = append(attributes, attribute.Int64(k, val))
		case float64:
			attributes = append(attributes, attribute.Float64(k, val))
		case bool:
			attributes = append(attributes, attribute.Bool(k, val))
		default:
			attributes = append(attributes, attribute.String(k, fmt.Sprint(val)))
		}
	}

	span.SetAttributes(attributes...)
}

// GetCarrier returns the propagation headers for the span context in ctx.
//
// Example:
//
//	for key, value := range t.GetCarrier(ctx) {
//	    req.Header.Set(key, value)
//	}
func (t *Tracer) GetCarrier(ctx context.Context) map[string]string {
	carrier := propagation.MapCarrier{}
	t.propagator.Inject(ctx, carrier)
	return carrier
}

// SetCarrierOnContext is the complement of GetCarrier: it returns ctx
// carrying the span context found in carrier.
func (t *Tracer) SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context {
	return t.propagator.Extract(ctx, propagation.MapCarrier(carrier))
}

// ForceFlush exports all ended spans that have not been exported yet.
func (t *Tracer) ForceFlush(ctx context.Context) error {
	return t.provider.ForceFlush(ctx)
}

// Shutdown flushes pending spans and stops the provider. Spans started after
// Shutdown are not recorded.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.logger.Info("shutting down tracer...", nil, nil)
	return t.provider.Shutdown(ctx)
}
