package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/reqtrace/v1/observability"
)

// Components and operations understood by ObserveOperation.
const (
	ComponentTracker = "reqtrace"
	ComponentServer  = "httpd"

	OperationBegin   = "begin"
	OperationEnd     = "end"
	OperationRequest = "request"
)

// ObserveOperation maps operation notifications onto the built-in series:
//   - reqtrace begin: spans_started_total{origin=Resource}
//   - reqtrace end:   spans_finished_total{status_class=SubResource}
//   - httpd request:  http_requests_total{handler=Resource,status_class=SubResource}
//     and http_request_duration_seconds{handler=Resource}
//
// Size of reqtrace notifications is the active table size. Any notification
// carrying an error increments operation_errors_total.
func (m *Metrics) ObserveOperation(op observability.OperationContext) {
	switch op.Component {
	case ComponentTracker:
		switch op.Operation {
		case OperationBegin:
			m.spansStarted.WithLabelValues(op.Resource).Inc()
		case OperationEnd:
			m.spansFinished.WithLabelValues(op.SubResource).Inc()
		}
		m.activeSpans.WithLabelValues(op.Component).Set(float64(op.Size))
	case ComponentServer:
		if op.Operation == OperationRequest {
			m.requestsTotal.WithLabelValues(op.Resource, op.SubResource).Inc()
			m.requestDuration.WithLabelValues(op.Resource).Observe(op.Duration.Seconds())
		}
	}

	if op.Error != nil {
		m.operationErrors.WithLabelValues(op.Component, op.Operation).Inc()
	}
}

// CreateCounter creates a new CounterVec metric and registers it.
func (m *Metrics) CreateCounter(name, help string, labels []string) *prometheus.CounterVec {
	counter := createCounterVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(counter)
	return counter
}

// CreateHistogram creates a new HistogramVec metric and registers it.
func (m *Metrics) CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	hist := createHistogramVec(m.namespace, name, help, labels, buckets)
	m.registerer.MustRegister(hist)
	return hist
}

// CreateGauge creates a new GaugeVec metric and registers it.
func (m *Metrics) CreateGauge(name, help string, labels []string) *prometheus.GaugeVec {
	gauge := createGaugeVec(m.namespace, name, help, labels)
	m.registerer.MustRegister(gauge)
	return gauge
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}

func createGaugeVec(namespace, name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}
