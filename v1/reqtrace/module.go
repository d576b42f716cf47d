package reqtrace

import (
	"context"
	"sync/atomic"

	"github.com/zoobzio/clockz"

	"github.com/Aleph-Alpha/reqtrace/v1/httpd"
	"github.com/Aleph-Alpha/reqtrace/v1/observability"
	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

// TracerFactory builds the tracer of a worker.
type TracerFactory interface {
	New() (*tracer.Tracer, error)
}

// Module traces every request served by an httpd.Server. It builds the
// worker's tracer in ChildInit, begins spans in PostReadRequest and ends them
// in LogTransaction.
//
// When the tracer cannot be built the module stays disabled: the error is
// logged and requests are served untraced.
type Module struct {
	cfg      Config
	factory  TracerFactory
	logger   Logger
	observer observability.Observer
	clock    clockz.Clock

	tracker atomic.Pointer[Tracker]
}

var _ httpd.Module = (*Module)(nil)

// NewModule returns a Module building its tracer with factory.
func NewModule(cfg Config, factory TracerFactory, logger Logger) *Module {
	return &Module{
		cfg:     cfg,
		factory: factory,
		logger:  logger,
		clock:   clockz.RealClock,
	}
}

// WithObserver attaches an observer to the tracker built in ChildInit.
func (m *Module) WithObserver(observer observability.Observer) *Module {
	m.observer = observer
	return m
}

// WithClock replaces the clock of the tracker built in ChildInit.
func (m *Module) WithClock(clock clockz.Clock) *Module {
	m.clock = clock
	return m
}

// Name implements httpd.Module.
func (m *Module) Name() string {
	return "reqtrace"
}

// Tracker returns the tracker, or nil while the module is disabled.
func (m *Module) Tracker() *Tracker {
	return m.tracker.Load()
}

// ChildInit builds the tracer and the tracker. It never fails.
func (m *Module) ChildInit(ctx context.Context) error {
	t, err := m.factory.New()
	if err != nil {
		m.logger.ErrorWithContext(ctx, "failed to initialize tracer, requests will not be traced", err, nil)
		return nil
	}

	tracker := NewTracker(m.cfg, t, m.logger).WithClock(m.clock)
	if m.observer != nil {
		tracker.WithObserver(m.observer)
	}
	m.tracker.Store(tracker)

	m.logger.InfoWithContext(ctx, "request tracing enabled", nil, map[string]interface{}{
		"service":   t.Config().ServiceName,
		"version":   t.Config().ServiceVersion,
		"operation": t.Config().OperationName,
	})
	return nil
}

// PostReadRequest implements httpd.Module.
func (m *Module) PostReadRequest(ctx context.Context, rec *httpd.Record) context.Context {
	tracker := m.tracker.Load()
	if tracker == nil {
		return ctx
	}

	spanCtx, err := tracker.Begin(ctx, requestFromRecord(rec))
	if err != nil {
		m.logger.WarnWithContext(ctx, "failed to begin request span", err, map[string]interface{}{
			"request_id": rec.ID,
		})
	}
	return spanCtx
}

// LogTransaction implements httpd.Module.
func (m *Module) LogTransaction(ctx context.Context, rec *httpd.Record) {
	tracker := m.tracker.Load()
	if tracker == nil {
		return
	}

	if err := tracker.End(ctx, requestFromRecord(rec)); err != nil {
		m.logger.WarnWithContext(ctx, "failed to end request span", err, map[string]interface{}{
			"request_id": rec.ID,
			"status":     rec.Status,
		})
	}
}

// requestFromRecord shares rec's inbound headers so injected propagation
// headers are visible to the handler.
func requestFromRecord(rec *httpd.Record) *Request {
	req := &Request{
		ID:           RequestID(rec.ID),
		Method:       rec.Method,
		URI:          rec.URI,
		RequestLine:  rec.RequestLine,
		ClientAddr:   rec.ClientIP,
		AuthType:     rec.AuthType,
		ServerConfig: rec.ServerConfig,
		Header:       rec.HeadersIn,
		LogID:        rec.LogID,
		Handler:      rec.Handler,
		Filename:     rec.Filename,
		Hostname:     rec.Hostname,
		Status:       rec.Status,
	}
	if rec.Main != nil {
		req.MainID = RequestID(rec.Main.ID)
	}
	return req
}
