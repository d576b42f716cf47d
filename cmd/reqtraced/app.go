package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Aleph-Alpha/reqtrace/v1/config"
	"github.com/Aleph-Alpha/reqtrace/v1/httpd"
	"github.com/Aleph-Alpha/reqtrace/v1/logger"
	"github.com/Aleph-Alpha/reqtrace/v1/metrics"
	"github.com/Aleph-Alpha/reqtrace/v1/observability"
	"github.com/Aleph-Alpha/reqtrace/v1/reqtrace"
	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

// newApp wires the application. The tracer module comes before the http
// server so the server stops, and finishes its spans, before tracers flush.
func newApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Supply(cfg.Logger, cfg.Metrics, cfg.Tracer, cfg.Tracker, cfg.HTTPD),
		logger.FXModule,
		fx.WithLogger(func(l *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Zap}
		}),
		fx.Provide(
			func(l *logger.Logger) tracer.Logger { return l },
			func(l *logger.Logger) httpd.Logger { return l },
			func(l *logger.Logger) reqtrace.Logger { return l },
		),
		metrics.FXModule,
		tracer.FXModule,
		httpd.FXModule,
		reqtrace.FXModule,
		fx.Invoke(registerRoutes),
	)
}

// registerRoutes adds the built-in handlers. The document root, if any, is
// mounted below them when the server starts.
func registerRoutes(srv *httpd.Server, m *reqtrace.Module, collector metrics.MetricsCollector) {
	srv.Handle("healthz", "/healthz", healthHandler(m))

	includes := collector.CreateCounter("include_subrequests_total",
		"Sub-requests issued by the include handler, by status class.", []string{"status_class"})
	srv.Handle("include", "/include", includeHandler(srv, func(status int) {
		includes.WithLabelValues(observability.StatusClass(status)).Inc()
	}))
}

func healthHandler(m *reqtrace.Module) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		tracker := m.Tracker()
		if tracker == nil {
			_, _ = io.WriteString(w, "ok tracing=disabled\n")
			return
		}
		_, _ = fmt.Fprintf(w, "ok tracing=enabled active_spans=%d\n", tracker.Active())
	})
}

// includeHandler answers with the bodies of the local paths named by the
// "src" query parameters, each fetched as a sub-request.
func includeHandler(srv *httpd.Server, observe func(status int)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sources := r.URL.Query()["src"]
		if len(sources) == 0 {
			http.Error(w, "missing src parameter", http.StatusBadRequest)
			return
		}

		var body strings.Builder
		status := http.StatusOK
		for _, src := range sources {
			if !strings.HasPrefix(src, "/") || strings.HasPrefix(src, "/include") {
				http.Error(w, "invalid src "+src, http.StatusBadRequest)
				return
			}

			resp, err := srv.SubRequest(r, http.MethodGet, src)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			observe(resp.Status)
			if resp.Status >= http.StatusBadRequest {
				status = http.StatusBadGateway
			}
			body.Write(resp.Body)
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body.String())
	})
}
