package tracer

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides a *Factory built from the tracer.Config and Logger in the
// container and shuts down every Tracer it produced when the application stops.
//
// List it before the http server module so the server is stopped, and its
// in-flight spans finished, before the tracers flush.
//
//	app := fx.New(
//	    fx.Supply(cfg.Tracer),
//	    tracer.FXModule,
//	    httpd.FXModule,
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		newFactory,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

func newFactory(cfg Config, logger Logger) *Factory {
	return NewFactory(cfg, logger)
}

// RegisterTracerLifecycle registers an OnStop hook flushing and stopping all
// tracers built by factory.
func RegisterTracerLifecycle(lc fx.Lifecycle, factory *Factory) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			factory.logger.Info("shutting down tracers...", nil, map[string]interface{}{
				"count": factory.Built(),
			})
			return factory.Shutdown(ctx)
		},
	})
}
