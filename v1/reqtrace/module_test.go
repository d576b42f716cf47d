package reqtrace

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/reqtrace/v1/httpd"
	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

func newHTTPDLogger(t *testing.T) *httpd.MockLogger {
	ctrl := gomock.NewController(t)
	log := httpd.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return log
}

func newTracedServer(t *testing.T, factory TracerFactory, log Logger) (*httpd.Server, *Module) {
	t.Helper()

	srv := httpd.NewServer(httpd.Config{Name: "edge", Address: ":8080"}, newHTTPDLogger(t))
	m := NewModule(Config{}, factory, log)
	srv.Register(m)
	require.NoError(t, srv.ChildInit(context.Background()))
	return srv, m
}

func TestModuleTracesRequestAndSubRequest(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	factory := tracer.NewFactory(testTracerConfig, newTracerLogger(t), tracer.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = factory.Shutdown(context.Background()) })

	srv, m := newTracedServer(t, factory, newQuietLogger(t))
	require.NotNil(t, m.Tracker())
	assert.Equal(t, 1, factory.Built())

	srv.Handle("fragment", "/fragment", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "fragment")
	}))
	srv.Handle("page", "/page", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := trace.SpanContextFromContext(r.Context())
		assert.True(t, sc.IsValid())
		assert.Contains(t, r.Header.Get("traceparent"), sc.SpanID().String())

		resp, err := srv.SubRequest(r, http.MethodGet, "/fragment")
		require.NoError(t, err)
		_, _ = w.Write(resp.Body)
	}))

	req := httptest.NewRequest(http.MethodGet, "/page?lang=de", nil)
	req.Header.Set("traceparent", remoteParent)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "fragment", rec.Body.String())
	assert.Equal(t, 0, m.Tracker().Active())

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	sub, main := spans[0], spans[1]

	assert.Equal(t, "GET /page HTTP/1.1", main.Name())
	assert.Equal(t, remoteTraceID, main.SpanContext().TraceID().String())
	assert.Equal(t, remoteSpanID, main.Parent().SpanID().String())

	assert.Equal(t, "GET /fragment HTTP/1.1", sub.Name())
	assert.Equal(t, main.SpanContext().SpanID(), sub.Parent().SpanID())

	mainAttrs := attrsOf(main)
	assert.Equal(t, "page", mainAttrs[HandlerKey].AsString())
	assert.Equal(t, "200", mainAttrs[StatusCodeKey].AsString())
	assert.Equal(t, "edge::8080", mainAttrs[ServerConfigKey].AsString())
	assert.Equal(t, "192.0.2.1", mainAttrs[PeerAddressKey].AsString())
	assert.Equal(t, rec.Header().Get(httpd.DefaultRequestIDHeader), mainAttrs[LogIDKey].AsString())
	assert.Equal(t, "fragment", attrsOf(sub)[HandlerKey].AsString())
}

func TestModuleTracesRejectedRequest(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	factory := tracer.NewFactory(testTracerConfig, newTracerLogger(t), tracer.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = factory.Shutdown(context.Background()) })

	srv, m := newTracedServer(t, factory, newQuietLogger(t))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("PROPFIND", "/page", nil))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, 0, m.Tracker().Active())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := attrsOf(spans[0])
	assert.Equal(t, "501", attrs[StatusCodeKey].AsString())
	assert.True(t, attrs[ErrorKey].AsBool())
	assert.NotContains(t, attrs, HandlerKey)
}

func TestModuleDisabledWhenTracerFails(t *testing.T) {
	factory := tracer.NewFactory(tracer.Config{Propagators: []string{"zipkin"}}, newTracerLogger(t))

	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().
		ErrorWithContext(gomock.Any(), "failed to initialize tracer, requests will not be traced", gomock.Any(), gomock.Any()).
		Times(1)

	srv, m := newTracedServer(t, factory, log)
	assert.Nil(t, m.Tracker())
	assert.Equal(t, 0, factory.Built())

	srv.Handle("ok", "/ok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, trace.SpanContextFromContext(r.Context()).IsValid())
	}))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFXModuleRegistersWithServer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	var (
		srv *httpd.Server
		m   *Module
	)

	app := fxtest.New(t,
		fx.Supply(Config{}, httpd.Config{Address: "127.0.0.1:0"}),
		fx.Provide(
			func() Logger { return newQuietLogger(t) },
			func() httpd.Logger { return newHTTPDLogger(t) },
			func() *tracer.Factory {
				return tracer.NewFactory(testTracerConfig, newTracerLogger(t), tracer.WithSpanProcessor(recorder))
			},
		),
		httpd.FXModule,
		FXModule,
		fx.Populate(&srv, &m),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, m.Tracker())

	resp, err := http.Get("http://" + srv.Addr() + "/missing")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "404", attrsOf(spans[0])[StatusCodeKey].AsString())
}
