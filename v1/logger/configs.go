package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Encodings accepted by Config.Encoding.
const (
	EncodingJSON    = "json"
	EncodingConsole = "console"
)

// DefaultServiceName is attached to every log entry when Config.ServiceName is empty.
const DefaultServiceName = "reqtraced"

// Config controls how the logger is built.
type Config struct {
	// Level is one of debug, info, warning or error. Anything else means info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// Encoding is json (default) or console.
	Encoding string `yaml:"encoding" envconfig:"LOGGER_ENCODING"`

	// ServiceName is added as the "service" field of every entry.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`

	// EnableTracing adds trace_id and span_id to entries written through the
	// *WithContext methods when the context carries a valid span.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`
}

func (c Config) withDefaults() Config {
	if c.ServiceName == "" {
		c.ServiceName = DefaultServiceName
	}
	if c.Encoding == "" {
		c.Encoding = EncodingJSON
	}
	return c
}
