// Package httpd is a small HTTP server with an Apache style module hook
// system.
//
// Every request gets a Record that travels through three hooks of every
// registered Module:
//
//   - ChildInit runs once before the server accepts connections.
//   - PostReadRequest runs after the headers were read and the request passed
//     validation. Requests with a method the server does not implement (501)
//     or a malformed target (400) skip it.
//   - LogTransaction runs for every request once the response is final,
//     rejected requests included.
//
// Routes are registered by name; the name of the matched route ends up in
// Record.Handler and static files served with ServeFiles fill in
// Record.Filename:
//
//	srv := httpd.NewServer(httpd.Config{Name: "edge", Address: ":8080"}, log)
//	srv.Register(tracingModule)
//	srv.Handle("health", "/healthz", healthHandler)
//	srv.ServeFiles("static", "/", "/var/www")
//	if err := srv.Start(ctx); err != nil {
//		return err
//	}
//
// # Sub-requests
//
// A handler can run another request internally with SubRequest. The
// sub-request gets its own Record whose Main points to the parent, passes
// through the same hooks and its response is buffered:
//
//	resp, err := srv.SubRequest(r, http.MethodGet, "/fragments/header.html")
package httpd
