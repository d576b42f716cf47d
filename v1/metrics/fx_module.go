package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/reqtrace/v1/logger"
	"github.com/Aleph-Alpha/reqtrace/v1/observability"
)

// FXModule provides *Metrics, exposes it as the application's
// observability.Observer and as MetricsCollector, and runs the metrics server
// for the lifetime of the app.
//
//	app := fx.New(
//	    fx.Supply(cfg.Logger, cfg.Metrics),
//	    logger.FXModule,
//	    metrics.FXModule,
//	)
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		asObserver,
		asCollector,
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

func asObserver(m *Metrics) observability.Observer {
	return m
}

func asCollector(m *Metrics) MetricsCollector {
	return m
}

// RegisterMetricsLifecycle binds the metrics listener on start, serves it in
// the background and shuts the server down on stop. Binding synchronously
// makes an occupied port fail application start.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", m.Server.Addr)
			if err != nil {
				return err
			}

			log.Info("Starting Prometheus metrics server", nil, map[string]interface{}{
				"address": ln.Addr().String(),
			})

			go func() {
				if err := m.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Error serving Prometheus metrics", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
