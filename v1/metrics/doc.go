// Package metrics exposes Prometheus metrics for the request tracing server.
//
// Metrics implements observability.Observer. Components report what they did
// and the notifications are turned into series:
//
//	spans_started_total{origin="root|propagated|child|synthesized"}
//	spans_finished_total{status_class="2xx|3xx|4xx|5xx"}
//	active_spans{component="reqtrace"}
//	http_requests_total{handler, status_class}
//	http_request_duration_seconds{handler}
//	operation_errors_total{component, operation}
//
// Every series carries a constant service label and, when configured, the
// namespace prefix. Additional series can be registered with CreateCounter,
// CreateHistogram and CreateGauge.
//
// # Configuration
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=edge
//	METRICS_SERVICE_NAME=edge
//
// # FX
//
// FXModule provides *Metrics, observability.Observer and MetricsCollector, and serves the
// registry on /metrics while the application runs.
package metrics
