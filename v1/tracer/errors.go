package tracer

import "errors"

var (
	// ErrUnknownPropagator is returned when Config.Propagators names a format
	// this package does not know.
	ErrUnknownPropagator = errors.New("tracer: unknown propagator")

	// ErrExporter is returned when the OTLP exporter cannot be created.
	ErrExporter = errors.New("tracer: cannot create exporter")
)

// IsUnknownPropagatorError reports whether err stems from an unknown propagator name.
func IsUnknownPropagatorError(err error) bool {
	return errors.Is(err, ErrUnknownPropagator)
}
