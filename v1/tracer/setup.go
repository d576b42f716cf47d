package tracer

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName identifies the spans created by this module.
const instrumentationName = "github.com/Aleph-Alpha/reqtrace"

// Logger defines the logging methods the tracer package needs.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=tracer
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Tracer wraps an OpenTelemetry TracerProvider together with the propagator
// used for the configured header format. One Tracer is built per worker and
// shared by every request it serves.
//
// Tracer is safe for concurrent use.
type Tracer struct {
	provider   *sdktrace.TracerProvider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	cfg        Config
	logger     Logger
}

// Option customises NewClient.
type Option func(*options)

type options struct {
	processors []sdktrace.SpanProcessor
	sampler    sdktrace.Sampler
}

// WithSpanProcessor registers an additional span processor, e.g. a
// tracetest.SpanRecorder in tests.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) {
		o.processors = append(o.processors, sp)
	}
}

// WithSampler replaces the default parent-based always-on sampler.
func WithSampler(s sdktrace.Sampler) Option {
	return func(o *options) {
		o.sampler = s
	}
}

// NewClient creates a Tracer from cfg.
//
// When export is enabled an OTLP/HTTP exporter is attached through a batch
// span processor. The provider's resource carries service name, version and
// deployment environment. The provider and the propagator are also installed
// as the otel globals.
//
// Example:
//
//	t, err := tracer.NewClient(tracer.Config{
//	    ServiceName:  "edge",
//	    EnableExport: true,
//	    Endpoint:     "http://collector:4318/v1/traces",
//	}, log)
//	if err != nil {
//	    return err
//	}
//	defer t.Shutdown(context.Background())
func NewClient(cfg Config, logger Logger, opts ...Option) (*Tracer, error) {
	cfg = cfg.withDefaults()

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	propagator, err := newPropagator(cfg.Propagators)
	if err != nil {
		return nil, err
	}

	var providerOpts []sdktrace.TracerProviderOption

	if cfg.EnableExport {
		exporter, err := newExporter(cfg)
		if err != nil {
			return nil, err
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}

	for _, sp := range o.processors {
		providerOpts = append(providerOpts, sdktrace.WithSpanProcessor(sp))
	}

	if o.sampler != nil {
		providerOpts = append(providerOpts, sdktrace.WithSampler(o.sampler))
	}

	providerOpts = append(providerOpts, sdktrace.WithResource(resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironment(cfg.AppEnv),
		attribute.String("environment", cfg.AppEnv),
	)))

	tp := sdktrace.NewTracerProvider(providerOpts...)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)

	logger.Info("tracer initialized", nil, map[string]interface{}{
		"service":     cfg.ServiceName,
		"version":     cfg.ServiceVersion,
		"export":      cfg.EnableExport,
		"propagators": strings.Join(cfg.Propagators, ","),
	})

	return &Tracer{
		provider:   tp,
		tracer:     tp.Tracer(instrumentationName, trace.WithInstrumentationVersion(cfg.ServiceVersion)),
		propagator: propagator,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

func newExporter(cfg Config) (*otlptrace.Exporter, error) {
	var clientOpts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(clientOpts...))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExporter, err)
	}
	return exporter, nil
}

func newPropagator(names []string) (propagation.TextMapPropagator, error) {
	propagators := make([]propagation.TextMapPropagator, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case PropagatorTraceContext:
			propagators = append(propagators, propagation.TraceContext{})
		case PropagatorBaggage:
			propagators = append(propagators, propagation.Baggage{})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownPropagator, name)
		}
	}
	return propagation.NewCompositeTextMapPropagator(propagators...), nil
}
