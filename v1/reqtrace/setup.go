package reqtrace

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/reqtrace/v1/observability"
	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

// Logger is the context-aware logger used by the tracker.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=reqtrace
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Tracker keeps the active span of every in-flight request of one worker.
//
// Begin starts a span and stores it under the request id, End tags and
// finishes it and drops the entry. The table is guarded by a mutex because
// requests are served on concurrent goroutines; the host server must still not
// call Begin or End concurrently for the same request id.
type Tracker struct {
	tracer   *tracer.Tracer
	logger   Logger
	observer observability.Observer
	clock    clockz.Clock
	cfg      Config

	mu       sync.Mutex
	active   map[RequestID]*activeSpan
	finished *finishedSet
}

type activeSpan struct {
	ctx     context.Context
	span    trace.Span
	origin  Origin
	started time.Time
}

// NewTracker returns a Tracker recording spans with t.
func NewTracker(cfg Config, t *tracer.Tracer, logger Logger) *Tracker {
	cfg = cfg.withDefaults()
	return &Tracker{
		tracer:   t,
		logger:   logger,
		clock:    clockz.RealClock,
		cfg:      cfg,
		active:   make(map[RequestID]*activeSpan),
		finished: newFinishedSet(cfg.FinishedMemory),
	}
}

// WithObserver attaches an observer notified after every Begin and End.
func (t *Tracker) WithObserver(observer observability.Observer) *Tracker {
	t.observer = observer
	return t
}

// WithClock replaces the clock providing span start and finish timestamps.
func (t *Tracker) WithClock(clock clockz.Clock) *Tracker {
	t.clock = clock
	return t
}

// Begin starts the span of req and returns ctx carrying it.
//
// A sub-request whose main request is tracked becomes a child of the main
// request's span. Any other request continues the trace found in req.Header,
// or starts a new trace when there is none. The started span's context is
// injected back into req.Header.
//
// Begin returns ErrSpanActive, and ctx with the existing span, when req
// already has an active span.
func (t *Tracker) Begin(ctx context.Context, req *Request) (context.Context, error) {
	if req == nil || req.ID == "" {
		return ctx, ErrMissingRequestID
	}

	t.mu.Lock()
	if existing, ok := t.active[req.ID]; ok {
		t.mu.Unlock()
		return trace.ContextWithSpan(ctx, existing.span), fmt.Errorf("%w: %s", ErrSpanActive, req.ID)
	}
	entry := t.beginLocked(ctx, req)
	size := len(t.active)
	t.mu.Unlock()

	t.logger.DebugWithContext(entry.ctx, "span started", nil, map[string]interface{}{
		"request_id":   string(req.ID),
		"origin":       string(entry.origin),
		"active_spans": size,
	})
	t.observe(OperationBegin, string(entry.origin), "", 0, nil, size)

	return entry.ctx, nil
}

// beginLocked starts the span and inserts it. t.mu must be held.
func (t *Tracker) beginLocked(ctx context.Context, req *Request) *activeSpan {
	if req.Header == nil {
		req.Header = make(http.Header)
	}

	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithTimestamp(t.clock.Now()),
		trace.WithAttributes(t.startAttributes(req)...),
	}

	var (
		parent context.Context
		origin Origin
	)

	main, isChild := t.active[req.MainID]
	switch {
	case req.MainID != "" && isChild:
		parent = trace.ContextWithSpanContext(ctx, main.span.SpanContext())
		origin = OriginChild
	default:
		extracted := t.tracer.Extract(ctx, propagation.HeaderCarrier(req.Header))
		if sc := trace.SpanContextFromContext(extracted); sc.IsValid() && sc.IsRemote() {
			parent = extracted
			origin = OriginPropagated
		} else {
			parent = ctx
			origin = OriginRoot
			opts = append(opts, trace.WithNewRoot())
		}
	}

	spanCtx, span := t.tracer.StartSpan(parent, req.spanName(), opts...)

	entry := &activeSpan{
		ctx:     spanCtx,
		span:    span,
		origin:  origin,
		started: t.clock.Now(),
	}
	t.active[req.ID] = entry

	t.tracer.Inject(spanCtx, propagation.HeaderCarrier(req.Header))

	return entry
}

func (t *Tracker) startAttributes(req *Request) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		SpanTypeKey.String(SpanTypeWeb),
		OperationNameKey.String(t.tracer.Config().OperationName),
		HTTPURLKey.String(req.URI),
		HTTPMethodKey.String(req.Method),
		PeerAddressKey.String(req.ClientAddr),
	}
	if ua := req.Header.Get("User-Agent"); ua != "" {
		attrs = append(attrs, UserAgentKey.String(ua))
	}
	if req.AuthType != "" {
		attrs = append(attrs, AuthTypeKey.String(req.AuthType))
	}
	return append(attrs, ServerConfigKey.String(req.ServerConfig))
}

// End finishes the span of req.
//
// When Begin never ran for req, which happens for requests the host server
// rejects before its begin hook, a span is started first so that every
// finished request is traced exactly once. A second End for the same request
// returns ErrSpanFinished and finishes nothing.
//
// The late-bound fields of req are tagged, status codes of 500 and above mark
// the span as failed.
func (t *Tracker) End(ctx context.Context, req *Request) error {
	if req == nil || req.ID == "" {
		return ErrMissingRequestID
	}

	t.mu.Lock()
	entry, ok := t.active[req.ID]
	if !ok {
		if t.finished.contains(req.ID) {
			size := len(t.active)
			t.mu.Unlock()

			err := fmt.Errorf("%w: %s", ErrSpanFinished, req.ID)
			t.observe(OperationEnd, "", observability.StatusClass(req.Status), 0, err, size)
			return err
		}
		entry = t.beginLocked(ctx, req)
		entry.origin = OriginSynthesized
	}
	delete(t.active, req.ID)
	t.finished.add(req.ID)
	size := len(t.active)
	t.mu.Unlock()

	if !ok {
		t.logger.DebugWithContext(entry.ctx, "span synthesized for request without begin", nil, map[string]interface{}{
			"request_id": string(req.ID),
			"status":     req.Status,
		})
		t.observe(OperationBegin, string(OriginSynthesized), "", 0, nil, size+1)
	}

	t.finish(entry, req)

	t.logger.DebugWithContext(entry.ctx, "span finished", nil, map[string]interface{}{
		"request_id":   string(req.ID),
		"status":       req.Status,
		"active_spans": size,
	})
	t.observe(OperationEnd, string(entry.origin), observability.StatusClass(req.Status), t.clock.Since(entry.started), nil, size)

	return nil
}

func (t *Tracker) finish(entry *activeSpan, req *Request) {
	span := entry.span

	if req.LogID != "" {
		span.SetAttributes(LogIDKey.String(req.LogID))
	}
	if req.Handler != "" {
		span.SetAttributes(HandlerKey.String(req.Handler))
	}
	if req.Filename != "" {
		span.SetAttributes(FilenameKey.String(req.Filename))
	}
	if req.Hostname != "" {
		span.SetAttributes(HostnameKey.String(req.Hostname))
	}
	span.SetAttributes(StatusCodeKey.String(strconv.Itoa(req.Status)))

	if req.Status >= http.StatusInternalServerError {
		span.SetAttributes(ErrorKey.Bool(true))
		span.SetStatus(codes.Error, http.StatusText(req.Status))
	}

	span.End(trace.WithTimestamp(t.clock.Now()))
}

// Active returns the number of requests with an active span.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.active)
}

// Lookup returns the span context of the active span of id.
func (t *Tracker) Lookup(id RequestID) (trace.SpanContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.active[id]
	if !ok {
		return trace.SpanContext{}, false
	}
	return entry.span.SpanContext(), true
}
