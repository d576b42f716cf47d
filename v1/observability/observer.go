// Package observability defines the hook through which instrumented components
// report the operations they perform.
//
// Components accept an optional Observer and notify it after each operation.
// The metrics package ships an implementation that turns these notifications
// into Prometheus series; tests typically record them in memory.
package observability

import (
	"strconv"
	"time"
)

// OperationContext describes a single completed operation.
type OperationContext struct {
	// Component is the reporting package, e.g. "reqtrace".
	Component string

	// Operation is the lifecycle step, e.g. "begin" or "end".
	Operation string

	// Resource is the primary subject of the operation.
	Resource string

	// SubResource adds detail to Resource, e.g. a status class.
	SubResource string

	// Duration is the time the operation covered.
	Duration time.Duration

	// Error is the error the operation ended with, if any.
	Error error

	// Size is a component specific magnitude, e.g. the number of tracked entries.
	Size int64

	// Metadata carries additional key-value pairs.
	Metadata map[string]interface{}
}

// Observer receives operation notifications. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// StatusClass returns "1xx" to "5xx" for a valid HTTP status code and
// "unknown" otherwise.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
