package requestctx

import (
	"context"

	"go.uber.org/zap"

	"github.com/woodcraft-atelier/api/internal/domain"
)

type contextKey string

const (
	loggerKey contextKey = "woodcraft/requestctx/logger"
	traceKey  contextKey = "woodcraft/requestctx/trace"
	localeKey contextKey = "woodcraft/requestctx/locale"
)

var noopLogger = zap.NewNop()

// TraceInfo is the trace metadata carried alongside a request.
type TraceInfo struct {
	TraceID   string
	SpanID    string
	Sampled   bool
	ProjectID string
}

// WithLogger stores the request scoped logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request scoped logger or a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared no-op logger.
func NoopLogger() *zap.Logger { return noopLogger }

func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceKey, info)
}

func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey).(TraceInfo)
	return info, ok
}

// TraceID returns the trace id or an empty string.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// WithLocale records the locale negotiated for the request.
func WithLocale(ctx context.Context, locale domain.Locale) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeKey, locale)
}

// Locale returns the negotiated locale, defaulting to English.
func Locale(ctx context.Context) domain.Locale {
	if ctx == nil {
		return domain.DefaultLocale
	}
	if locale, ok := ctx.Value(localeKey).(domain.Locale); ok && locale != "" {
		return locale
	}
	return domain.DefaultLocale
}
