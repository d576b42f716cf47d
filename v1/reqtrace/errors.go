package reqtrace

import "errors"

var (
	// ErrMissingRequestID is returned when a request has no identity to key the span table.
	ErrMissingRequestID = errors.New("reqtrace: request has no id")

	// ErrSpanActive is returned by Begin when the request already has an active span.
	ErrSpanActive = errors.New("reqtrace: span already active for request")

	// ErrSpanFinished is returned by End when the request's span was already finished.
	ErrSpanFinished = errors.New("reqtrace: span already finished for request")
)

// IsSpanFinishedError reports whether err means End was called twice.
func IsSpanFinishedError(err error) bool {
	return errors.Is(err, ErrSpanFinished)
}

// IsSpanActiveError reports whether err means Begin was called twice.
func IsSpanActiveError(err error) bool {
	return errors.Is(err, ErrSpanActive)
}
