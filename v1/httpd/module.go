package httpd

import "context"

// Module is a set of hooks the server calls during its lifecycle.
//
// Hooks of all registered modules run in registration order. PostReadRequest
// runs only for requests that passed validation; LogTransaction runs for every
// request, including rejected ones, after the response is final.
type Module interface {
	// Name identifies the module in logs.
	Name() string

	// ChildInit runs once before the server accepts requests.
	ChildInit(ctx context.Context) error

	// PostReadRequest runs after the request headers were read. The returned
	// context is used for the rest of the request.
	PostReadRequest(ctx context.Context, rec *Record) context.Context

	// LogTransaction runs after the response was sent.
	LogTransaction(ctx context.Context, rec *Record)
}
