package httpd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/Aleph-Alpha/reqtrace/v1/observability"
)

// Logger defines the logging methods the server needs.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=httpd
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Server is an HTTP server that drives registered Modules through the
// lifecycle of every request: child init once, post read request after the
// headers were read, log transaction after the response was sent.
type Server struct {
	cfg          Config
	serverConfig string
	logger       Logger
	observer     observability.Observer

	router  *mux.Router
	allowed map[string]bool
	modules []Module

	http *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a Server from cfg. Routes are added with Handle,
// HandlePrefix and ServeFiles; modules with Register.
func NewServer(cfg Config, logger Logger) *Server {
	cfg = cfg.withDefaults()

	s := &Server{
		cfg:          cfg,
		serverConfig: cfg.Name + ":" + cfg.Address,
		logger:       logger,
		router:       mux.NewRouter(),
		allowed:      make(map[string]bool, len(cfg.AllowedMethods)),
	}
	for _, method := range cfg.AllowedMethods {
		s.allowed[strings.ToUpper(method)] = true
	}

	s.router.Use(s.bindHandler)

	s.http = &http.Server{
		Addr:              cfg.Address,
		Handler:           s,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return s
}

// WithObserver attaches an observer notified after every request.
func (s *Server) WithObserver(observer observability.Observer) *Server {
	s.observer = observer
	return s
}

// Register adds a module. Modules must be registered before Start.
func (s *Server) Register(m Module) {
	s.modules = append(s.modules, m)
	s.logger.Debug("module registered", nil, map[string]interface{}{
		"module": m.Name(),
	})
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServerConfig returns the identifier attached to every request record.
func (s *Server) ServerConfig() string {
	return s.serverConfig
}

// Handle routes path to h. name is recorded as the request's handler.
func (s *Server) Handle(name, path string, h http.Handler) *mux.Route {
	return s.router.Handle(path, h).Name(name)
}

// HandlePrefix routes every path below prefix to h.
func (s *Server) HandlePrefix(name, prefix string, h http.Handler) *mux.Route {
	return s.router.PathPrefix(prefix).Handler(h).Name(name)
}

// ServeFiles serves the directory root below prefix and records the
// resolved file name of every request.
func (s *Server) ServeFiles(name, prefix, root string) *mux.Route {
	files := http.StripPrefix(prefix, http.FileServer(http.Dir(root)))

	return s.HandlePrefix(name, prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := RecordFromContext(r.Context()); ok {
			rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, prefix))
			rec.Filename = filepath.Join(root, filepath.FromSlash(rel))
		}
		files.ServeHTTP(w, r)
	}))
}

// bindHandler records the matched route's name.
func (s *Server) bindHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rec, ok := RecordFromContext(r.Context()); ok {
			if route := mux.CurrentRoute(r); route != nil {
				rec.Handler = route.GetName()
				if rec.Handler == "" {
					rec.Handler, _ = route.GetPathTemplate()
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, nil)
}

// SubRequest runs an internal request for target through the full request
// lifecycle, as a sub-request of parent. parent must be a request this
// server is serving.
func (s *Server) SubRequest(parent *http.Request, method, target string) (*SubResponse, error) {
	main, ok := RecordFromContext(parent.Context())
	if !ok {
		return nil, ErrNoMainRequest
	}

	req, err := http.NewRequestWithContext(parent.Context(), method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("httpd: building sub-request: %w", err)
	}
	req.Proto, req.ProtoMajor, req.ProtoMinor = parent.Proto, parent.ProtoMajor, parent.ProtoMinor
	req.Host = parent.Host
	req.RemoteAddr = parent.RemoteAddr
	req.RequestURI = req.URL.RequestURI()
	req.Header = parent.Header.Clone()

	w := newCaptureWriter()
	s.serve(w, req, main)
	return w.response(), nil
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, main *Record) {
	rec := s.newRecord(r, main)
	sw := &statusWriter{ResponseWriter: w}
	ctx := r.Context()

	if main == nil {
		sw.Header().Set(s.cfg.RequestIDHeader, rec.LogID)
	}

	if code := s.validate(r); code != 0 {
		s.logger.Debug("request rejected", nil, map[string]interface{}{
			"request_id": rec.ID,
			"status":     code,
		})
		http.Error(sw, http.StatusText(code), code)
	} else {
		for _, m := range s.modules {
			ctx = m.PostReadRequest(ctx, rec)
		}
		ctx = withRecord(ctx, rec)
		s.dispatch(sw, r.WithContext(ctx), rec)
	}

	rec.Status = sw.statusCode()

	for _, m := range s.modules {
		m.LogTransaction(ctx, rec)
	}

	s.observe(rec, time.Since(rec.Start))
}

// dispatch routes the request and turns a handler panic into a 500.
func (s *Server) dispatch(w *statusWriter, r *http.Request, rec *Record) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("handler panicked", fmt.Errorf("%v", p), map[string]interface{}{
				"request_id": rec.ID,
				"uri":        rec.URI,
			})
			if w.status == 0 {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}
	}()
	s.router.ServeHTTP(w, r)
}

// validate returns the status a malformed request is rejected with, or 0.
func (s *Server) validate(r *http.Request) int {
	if !s.allowed[r.Method] {
		return http.StatusNotImplemented
	}
	if !strings.HasPrefix(r.URL.Path, "/") {
		return http.StatusBadRequest
	}
	for _, segment := range strings.Split(r.URL.Path, "/") {
		if segment == ".." {
			return http.StatusBadRequest
		}
	}
	return 0
}

func (s *Server) observe(rec *Record, elapsed time.Duration) {
	if s.observer == nil {
		return
	}

	handler := rec.Handler
	if handler == "" {
		handler = "none"
	}

	s.observer.ObserveOperation(observability.OperationContext{
		Component:   "httpd",
		Operation:   "request",
		Resource:    handler,
		SubResource: observability.StatusClass(rec.Status),
		Duration:    elapsed,
		Metadata: map[string]interface{}{
			"sub_request": rec.Main != nil,
		},
	})
}

// ChildInit runs every module's ChildInit hook.
func (s *Server) ChildInit(ctx context.Context) error {
	for _, m := range s.modules {
		if err := m.ChildInit(ctx); err != nil {
			return fmt.Errorf("httpd: child init of module %s: %w", m.Name(), err)
		}
	}
	return nil
}

// Start initializes the modules, binds the listen address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	if err := s.ChildInit(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("httpd: listen on %s: %w", s.cfg.Address, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("http server listening", nil, map[string]interface{}{
		"address":       ln.Addr().String(),
		"server_config": s.serverConfig,
		"modules":       len(s.modules),
	})

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", err, nil)
		}
	}()
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	s.logger.Info("shutting down http server", nil, nil)
	return s.http.Shutdown(ctx)
}
