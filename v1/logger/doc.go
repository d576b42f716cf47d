// Package logger provides structured logging for the reqtrace server.
//
// It wraps Uber's zap with a small, map based field API that every other
// package consumes through its own narrow Logger interface:
//
//	log := logger.NewLoggerClient(logger.Config{
//		Level:         logger.Debug,
//		ServiceName:   "edge",
//		EnableTracing: true,
//	})
//
//	log.Info("listener ready", nil, map[string]interface{}{"address": ":8080"})
//	log.Error("shutdown failed", err, nil)
//
// # Trace correlation
//
// The *WithContext methods look up the span carried by the context. When
// EnableTracing is set and the span is valid, trace_id and span_id are added
// to the entry, so log lines written while handling a request can be joined
// with the request's span in the tracing backend:
//
//	log.DebugWithContext(ctx, "span started", nil, map[string]interface{}{
//		"request_id": id,
//	})
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENCODING=console         # json (default) or console
//	LOGGER_SERVICE_NAME=edge        # "service" field, defaults to reqtraced
//	LOGGER_ENABLE_TRACING=true      # add trace_id/span_id in *WithContext
//
// # FX
//
//	app := fx.New(
//		fx.Supply(cfg.Logger),
//		logger.FXModule,
//	)
//
// All methods are safe for concurrent use.
package logger
