package httpd

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/reqtrace/v1/observability"
)

// FXModule provides the *Server and runs it for the lifetime of the
// application. Routes and modules registered from fx.Invoke functions are in
// place before the server starts; the document root, if configured, is
// mounted last so it does not shadow them.
var FXModule = fx.Module("httpd",
	fx.Provide(
		newServer,
	),
	fx.Invoke(RegisterServerLifecycle),
)

type serverParams struct {
	fx.In

	Config   Config
	Logger   Logger
	Observer observability.Observer `optional:"true"`
}

func newServer(p serverParams) *Server {
	s := NewServer(p.Config, p.Logger)
	if p.Observer != nil {
		s.WithObserver(p.Observer)
	}
	return s
}

// RegisterServerLifecycle starts the server on application start and shuts it
// down gracefully on stop.
func RegisterServerLifecycle(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if root := s.cfg.DocumentRoot; root != "" {
				s.ServeFiles("static", "/", root)
			}
			return s.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return s.Shutdown(ctx)
		},
	})
}
