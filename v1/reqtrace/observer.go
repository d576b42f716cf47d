package reqtrace

import (
	"time"

	"github.com/Aleph-Alpha/reqtrace/v1/observability"
)

// Operations reported to the observer.
const (
	OperationBegin = "begin"
	OperationEnd   = "end"
)

// observe notifies the observer about a tracker operation if one is configured.
// size is the active table size after the operation.
func (t *Tracker) observe(operation, resource, subResource string, duration time.Duration, err error, size int) {
	if t.observer == nil {
		return
	}

	t.observer.ObserveOperation(observability.OperationContext{
		Component:   "reqtrace",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        int64(size),
	})
}
