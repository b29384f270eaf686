// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns a logger with the request ID already attached, so every
// log line from a handler or service is correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("product created", "sku", p.SKU)
//	// → time=... level=INFO msg="product created" request_id=a1b2c3d4 sku=ABC-1
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shashiranjanraj/catalog/config"
	"github.com/shashiranjanraj/catalog/pkg/reqid"
)

var L *slog.Logger

func init() {
	L = slog.New(consoleHandler(os.Stdout))
	slog.SetDefault(L)
}

// consoleHandler is JSON in production and human-readable text elsewhere.
func consoleHandler(w io.Writer) slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// Setup rebuilds the base logger so that records also reach the extra
// handlers (for example a MongoHandler).
func Setup(extra ...slog.Handler) {
	handler := consoleHandler(os.Stdout)
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	L = slog.New(handler)
	slog.SetDefault(L)
}

// SetOutput points the base logger at w. Tests use it to silence or capture logs.
func SetOutput(w io.Writer) {
	L = slog.New(consoleHandler(w))
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the logger stored by the request middleware, or the base
// logger tagged with the request_id found in ctx.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	if id := reqid.FromCtx(ctx); id != "" {
		return L.With("request_id", id)
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
