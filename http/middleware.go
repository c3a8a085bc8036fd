package http

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Middleware func(next Handler) Handler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h Handler, middleware ...Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// Use returns a copy of the table with every handler wrapped in middleware.
func (h Handlers) Use(middleware ...Middleware) Handlers {
	out := make(Handlers, len(h))
	for verb, handler := range h {
		if handler == nil {
			continue
		}
		out[verb] = Chain(handler, middleware...)
	}
	return out
}

// RecoverMiddleware turns a panic into a returned error, so the caller sees a
// failure result instead of an unwinding goroutine.
func RecoverMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, target string, body []byte) (res Result, err error) {
			defer func() {
				if recovered := recover(); recovered != nil {
					res, err = Result{}, fmt.Errorf("%w: %v", ErrHandlerPanic, recovered)
				}
			}()

			return next(ctx, target, body)
		}
	}
}

// TraceMiddleware runs the handler inside a child span of the connection span.
func TraceMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, target string, body []byte) (Result, error) {
			ctx, span := tracer.Start(ctx, "userver.handler",
				trace.WithAttributes(
					attribute.String("url.path", target),
					attribute.Int("http.request.body.size", len(body)),
				))
			defer span.End()

			res, err := next(ctx, target, body)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "handler failed")
				return res, err
			}
			span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
			return res, nil
		}
	}
}

// LogMiddleware logs every handler call at debug level.
func LogMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = DefaultLogger()
	}
	return func(next Handler) Handler {
		return func(ctx context.Context, target string, body []byte) (Result, error) {
			start := time.Now()
			res, err := next(ctx, target, body)

			attrs := []any{
				slog.String("target", target),
				slog.Int("status", res.Status),
				slog.Duration("elapsed", time.Since(start)),
			}
			if req, ok := RequestFromContext(ctx); ok {
				attrs = append(attrs, slog.String("method", req.Method))
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.DebugContext(ctx, "handled", attrs...)
			return res, err
		}
	}
}
