package metrics

// DefaultMetricsAddress is used when Config.Address is empty.
const DefaultMetricsAddress = ":9090"

// DefaultServiceName is the "service" label value when Config.ServiceName is empty.
const DefaultServiceName = "reqtraced"

// DefaultMetricsPath is the path the registry is served on.
const DefaultMetricsPath = "/metrics"

// Config defines the configuration of the Prometheus metrics server.
type Config struct {
	// Address is the listen address of the metrics HTTP server,
	// e.g. ":9090" or "127.0.0.1:9100".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go runtime, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name, e.g. "edge" gives "edge_spans_started_total".
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached as constant "service" label to every series.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
