package log

import (
	"context"
	"log/slog"
)

type contextKey string

const attrsContextKey contextKey = "attrs"

// WithAttrs attaches attributes to the context. Records logged with a
// context-aware handler carry them automatically.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing := ctxAttrs(ctx)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)

	return context.WithValue(ctx, attrsContextKey, merged)
}

func ctxAttrs(ctx context.Context) []slog.Attr {
	raw := ctx.Value(attrsContextKey)
	if raw == nil {
		return nil
	}

	attrs, ok := raw.([]slog.Attr)
	if !ok {
		return nil
	}

	return attrs
}

// ContextHandler decorates records with the attributes stored in their
// context by WithAttrs.
type ContextHandler struct {
	slog.Handler
}

// Handle implements slog.Handler.
func (h ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := ctxAttrs(ctx); len(attrs) > 0 {
		record.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, record)
}

var _ slog.Handler = ContextHandler{}
