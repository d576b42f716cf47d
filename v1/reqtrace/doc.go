// Package reqtrace traces the requests of an HTTP server.
//
// A Tracker keeps the active span of every in-flight request of one worker,
// keyed by RequestID. The host server drives it through three hooks:
//
//   - worker initialization builds the tracer (Module.ChildInit)
//   - Begin starts a request's span once its headers are read
//   - End tags the span with the response and finishes it
//
// Begin parents the span on the main request's span for sub-requests, on the
// trace context found in the inbound headers otherwise, and starts a new trace
// when there is none. The started span's context is written back into the
// inbound headers so downstream handlers propagate it.
//
// End finishes exactly one span per request: a request rejected before Begin
// gets a span started on the spot, and a repeated End for a request that
// already finished returns ErrSpanFinished.
//
// # Usage with httpd
//
//	factory := tracer.NewFactory(tracer.Config{ServiceName: "edge"}, log)
//	srv := httpd.NewServer(httpd.Config{Address: ":8080"}, log)
//	srv.Register(reqtrace.NewModule(reqtrace.Config{}, factory, log))
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # Span tags
//
// On start: span.type, operation.name, http.url, http.method, peer.address,
// http.user_agent and http.auth_type when present, httpd.server_config.
// On finish: httpd.log_id, httpd.handler, httpd.filename and httpd.hostname
// when set, http.status_code, and error=true for status codes of 500 and above.
package reqtrace
