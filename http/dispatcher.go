package http

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Result is what a handler answers: status code, body text and header overrides.
// Only the content type can be overridden; Content-Length and Date are always derived.
type Result struct {
	Status  int
	Body    string
	Headers Headers
}

// Handler serves one verb. body is nil when the request carried no payload.
// A returned error is turned into an empty 500 response.
type Handler func(ctx context.Context, target string, body []byte) (Result, error)

// Handlers maps a verb such as "get" or "POST" to its handler. Verbs match
// case-insensitively.
type Handlers map[string]Handler

var MethodNotAllowedHandler Handler = func(ctx context.Context, target string, body []byte) (Result, error) {
	return Result{Status: StatusMethodNotAllowed, Body: "method not allowed", Headers: Headers{}}, nil
}

type Dispatcher struct {
	handlers map[string]Handler
	fallback Handler
	logger   *slog.Logger
}

// NewDispatcher freezes the handler table. Later changes to handlers are not seen.
func NewDispatcher(handlers Handlers, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = DefaultLogger()
	}
	d := &Dispatcher{
		handlers: make(map[string]Handler, len(handlers)),
		fallback: MethodNotAllowedHandler,
		logger:   logger,
	}
	for verb, h := range handlers {
		if h == nil {
			continue
		}
		d.handlers[strings.ToLower(verb)] = h
	}
	return d
}

// Lookup returns the handler registered for method, or the 405 fallback.
func (d *Dispatcher) Lookup(method string) Handler {
	if h, ok := d.handlers[strings.ToLower(method)]; ok {
		return h
	}
	return d.fallback
}

// Dispatch runs the handler for method. Whatever the handler does, a usable Result
// comes back: errors, panics and out of range status codes all become an empty 500.
func (d *Dispatcher) Dispatch(ctx context.Context, method, target string, body []byte) Result {
	res, err := d.invoke(ctx, d.Lookup(method), target, body)
	if err == nil && !validStatus(res.Status) {
		err = fmt.Errorf("%w: %d", ErrInvalidStatusCode, res.Status)
	}
	if err != nil {
		d.logger.ErrorContext(ctx, "handler failed",
			slog.String("method", method),
			slog.String("target", target),
			slog.Any("error", err))
		return Result{Status: StatusInternalServerError, Headers: Headers{}}
	}
	if res.Headers == nil {
		res.Headers = Headers{}
	}
	return res
}

func (d *Dispatcher) invoke(ctx context.Context, h Handler, target string, body []byte) (res Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.DebugContext(ctx, "handler panic", slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, recovered)
		}
	}()

	return h(ctx, target, body)
}

type requestKey struct{}

// RequestFromContext returns the request being dispatched, giving handlers access
// to the parsed headers.
func RequestFromContext(ctx context.Context) (*Request, bool) {
	req, ok := ctx.Value(requestKey{}).(*Request)
	return req, ok
}

func contextWithRequest(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, requestKey{}, req)
}
