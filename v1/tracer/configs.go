package tracer

// Defaults applied by NewClient to empty Config fields.
const (
	DefaultServiceName   = "reqtraced"
	DefaultOperationName = "http.request"
	DefaultAppEnv        = "development"
)

// Propagator names accepted in Config.Propagators.
const (
	PropagatorTraceContext = "tracecontext"
	PropagatorBaggage      = "baggage"
)

// Config holds the settings used to construct a Tracer.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// ServiceVersion is reported as service.version. Empty means the version
	// string derived from the running binary, see DerivedVersion.
	ServiceVersion string `yaml:"service_version" envconfig:"TRACER_SERVICE_VERSION"`

	// AppEnv is reported as deployment.environment.
	AppEnv string `yaml:"app_env" envconfig:"APP_ENV"`

	// OperationName is the logical operation every request span represents.
	// The span name itself carries the request line.
	OperationName string `yaml:"operation_name" envconfig:"TRACER_OPERATION_NAME"`

	// EnableExport turns on the OTLP/HTTP exporter. When false spans are only
	// delivered to span processors passed with WithSpanProcessor.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`

	// Endpoint is the OTLP/HTTP collector URL, e.g. http://collector:4318/v1/traces.
	// Empty means the OTEL_EXPORTER_OTLP_* environment or the exporter default.
	Endpoint string `yaml:"endpoint" envconfig:"TRACER_ENDPOINT"`

	// Insecure disables TLS towards Endpoint.
	Insecure bool `yaml:"insecure" envconfig:"TRACER_INSECURE"`

	// Propagators selects the header formats used to extract and inject span
	// contexts. Defaults to tracecontext and baggage.
	Propagators []string `yaml:"propagators" envconfig:"TRACER_PROPAGATORS"`
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.ServiceVersion == "" {
		c.ServiceVersion = DerivedVersion()
	}
	if c.AppEnv == "" {
		c.AppEnv = DefaultAppEnv
	}
	if c.OperationName == "" {
		c.OperationName = DefaultOperationName
	}
	if len(c.Propagators) == 0 {
		c.Propagators = []string{PropagatorTraceContext, PropagatorBaggage}
	}
	return c
}
