package logger

import (
	"context"
	"errors"
	"syscall"

	"go.uber.org/fx"
)

// FXModule provides a *Logger built from the logger.Config found in the
// container and flushes it when the application stops.
//
//	app := fx.New(
//	    fx.Supply(logger.Config{Level: logger.Info}),
//	    logger.FXModule,
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// RegisterLoggerLifecycle flushes buffered entries on shutdown.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ignoreConsoleSyncError(client.Zap.Sync())
		},
	})
}

// ignoreConsoleSyncError drops the errors fsync reports for stderr/stdout
// when they are attached to a terminal or pipe.
func ignoreConsoleSyncError(err error) error {
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF) {
		return nil
	}
	return err
}
