package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus registry, the series fed by operation
// notifications and the HTTP server exposing them.
type Metrics struct {
	// Server serves the registry on DefaultMetricsPath.
	Server *http.Server

	// Registry holds every series of this service.
	Registry *prometheus.Registry

	registerer prometheus.Registerer
	namespace  string

	// request span tracker
	spansStarted  *prometheus.CounterVec
	spansFinished *prometheus.CounterVec
	activeSpans   *prometheus.GaugeVec

	// host server
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	operationErrors *prometheus.CounterVec
}

// NewMetrics creates a dedicated registry wrapped with a constant service
// label, registers the built-in series and prepares the HTTP server.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "edge"})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	registry := prometheus.NewRegistry()

	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry:   registry,
		registerer: wrappedRegistry,
		namespace:  cfg.Namespace,
	}

	m.spansStarted = createCounterVec(cfg.Namespace, "spans_started_total", "Request spans started, by parent origin", []string{"origin"})
	m.spansFinished = createCounterVec(cfg.Namespace, "spans_finished_total", "Request spans finished, by response status class", []string{"status_class"})
	m.activeSpans = createGaugeVec(cfg.Namespace, "active_spans", "Spans currently held in the active span table", []string{"component"})
	m.requestsTotal = createCounterVec(cfg.Namespace, "http_requests_total", "Requests served, by handler and status class", []string{"handler", "status_class"})
	m.requestDuration = createHistogramVec(cfg.Namespace, "http_request_duration_seconds", "Request wall time in seconds", []string{"handler"}, prometheus.DefBuckets)
	m.operationErrors = createCounterVec(cfg.Namespace, "operation_errors_total", "Failed operations, by component and operation", []string{"component", "operation"})

	wrappedRegistry.MustRegister(
		m.spansStarted,
		m.spansFinished,
		m.activeSpans,
		m.requestsTotal,
		m.requestDuration,
		m.operationErrors,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle(DefaultMetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}

	return m
}
