package common

import (
	"context"

	"go.uber.org/zap"
)

// NewLogger builds a zap logger. Unknown levels fall back to info; format
// is "json" or "console".
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
		zc.Encoding = "console"
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// LoggerFromContext returns the request-scoped logger, or fallback with the
// request id attached.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ContextKeyLogger).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		fallback = zap.NewNop()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return fallback.With(zap.String("request_id", id))
	}
	return fallback
}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, l)
}
