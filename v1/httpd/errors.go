package httpd

import "errors"

var (
	// ErrNoMainRequest is returned by SubRequest when the parent request was
	// not served by this Server.
	ErrNoMainRequest = errors.New("httpd: request has no server record")

	// ErrNotStarted is returned by Shutdown before Start.
	ErrNotStarted = errors.New("httpd: server not started")
)
