package reqtrace

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/reqtrace/v1/httpd"
	"github.com/Aleph-Alpha/reqtrace/v1/observability"
	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

// FXModule provides the tracing *Module and registers it with the
// *httpd.Server in the container. The tracer itself is built when the server
// starts, from the *tracer.Factory provided by tracer.FXModule.
//
//	app := fx.New(
//	    fx.Supply(cfg.Tracer, cfg.Tracker, cfg.HTTPD),
//	    tracer.FXModule,
//	    httpd.FXModule,
//	    reqtrace.FXModule,
//	)
var FXModule = fx.Module("reqtrace",
	fx.Provide(
		newModule,
	),
	fx.Invoke(RegisterModule),
)

type moduleParams struct {
	fx.In

	Config   Config
	Factory  *tracer.Factory
	Logger   Logger
	Observer observability.Observer `optional:"true"`
}

func newModule(p moduleParams) *Module {
	m := NewModule(p.Config, p.Factory, p.Logger)
	if p.Observer != nil {
		m.WithObserver(p.Observer)
	}
	return m
}

// RegisterModule registers m with the server's request lifecycle.
func RegisterModule(srv *httpd.Server, m *Module) {
	srv.Register(m)
}
