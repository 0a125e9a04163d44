package core

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKey struct{}

var defaultLogger atomic.Pointer[zap.Logger]

func init() {
	defaultLogger.Store(zap.NewNop())
}

// NewLogger builds a production zap logger at the given level ("debug", "info", ...).
func NewLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}

// SetLogger replaces the process logger used by WithDefaultLogger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	defaultLogger.Store(l)
}

// WithLogger attaches l to the context.
func WithLogger(parent context.Context, l *zap.Logger) context.Context {
	return context.WithValue(parent, loggerKey{}, l)
}

// WithDefaultLogger attaches the process logger tagged with reqId.
func WithDefaultLogger(parent context.Context, reqId string) context.Context {
	return WithLogger(parent, defaultLogger.Load().With(zap.String("req_id", reqId)))
}

// Logger returns the logger carried by ctx or the process logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return l
		}
	}
	return defaultLogger.Load()
}

func Infof(ctx context.Context, tpl string, args ...any) {
	Logger(ctx).Sugar().Infof(tpl, args...)
}

func Errorf(ctx context.Context, tpl string, args ...any) {
	Logger(ctx).Sugar().Errorf(tpl, args...)
}

func Warnf(ctx context.Context, tpl string, args ...any) {
	Logger(ctx).Sugar().Warnf(tpl, args...)
}

func Debugf(ctx context.Context, tpl string, args ...any) {
	Logger(ctx).Sugar().Debugf(tpl, args...)
}
