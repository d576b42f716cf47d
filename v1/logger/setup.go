package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.Logger behind a map based field API and adds trace
// correlation to the *WithContext methods.
type Logger struct {
	// Zap is the underlying logger, for callers that need zap directly.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient builds a Logger writing to stderr.
//
// Entries carry an ISO8601 "timestamp", the caller, and "pid" and "service"
// fields. Encoding is JSON unless Config.Encoding is "console".
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Debug, ServiceName: "edge"})
//	log.Info("server started", nil, nil)
func NewLoggerClient(cfg Config) *Logger {
	return newLogger(cfg, zapcore.Lock(os.Stderr))
}

// NewFromZap wraps an existing zap logger, e.g. one built on zaptest/observer.
func NewFromZap(z *zap.Logger, tracingEnabled bool) *Logger {
	return &Logger{Zap: z, tracingEnabled: tracingEnabled}
}

func newLogger(cfg Config, out zapcore.WriteSyncer) *Logger {
	cfg = cfg.withDefaults()

	z := zap.New(newCore(cfg, out),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	).With(
		zap.Int("pid", os.Getpid()),
		zap.String("service", cfg.ServiceName),
	)

	return NewFromZap(z, cfg.EnableTracing)
}

func newCore(cfg Config, out zapcore.WriteSyncer) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == EncodingConsole {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	return zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(parseLevel(cfg.Level)))
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
