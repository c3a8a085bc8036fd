package http

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/freekieb7/userver/test"
)

func TestChainOrder(t *testing.T) {
	var order []string
	wrap := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, target string, body []byte) (Result, error) {
				order = append(order, name)
				return next(ctx, target, body)
			}
		}
	}

	h := Chain(text("ok"), wrap("outer"), wrap("inner"))
	_, err := h(context.Background(), "/", nil)
	test.AssertNoError(t, err)
	test.AssertEqual(t, "outer", order[0])
	test.AssertEqual(t, "inner", order[1])
}

func TestRecoverMiddleware(t *testing.T) {
	h := Chain(func(ctx context.Context, target string, body []byte) (Result, error) {
		panic("boom")
	}, RecoverMiddleware())

	_, err := h(context.Background(), "/", nil)
	if !errors.Is(err, ErrHandlerPanic) {
		t.Fatalf("expected ErrHandlerPanic, got %v", err)
	}
}

func TestHandlersUseSkipsNil(t *testing.T) {
	handlers := Handlers{"get": text("ok"), "put": nil}.Use(TraceMiddleware(), RecoverMiddleware())

	test.AssertEqual(t, 1, len(handlers))
	res := NewDispatcher(handlers, nil).Dispatch(context.Background(), "GET", "/", nil)
	test.AssertEqual(t, StatusOK, res.Status)
	test.AssertEqual(t, "ok", res.Body)
}

func TestTraceMiddlewarePassesErrors(t *testing.T) {
	failure := errors.New("store offline")
	h := Chain(func(ctx context.Context, target string, body []byte) (Result, error) {
		return Result{}, failure
	}, TraceMiddleware())

	_, err := h(context.Background(), "/", nil)
	if !errors.Is(err, failure) {
		t.Fatalf("expected handler error, got %v", err)
	}
}

func TestLogMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := Chain(text("ok"), LogMiddleware(logger))
	ctx := contextWithRequest(context.Background(), &Request{Method: "GET", Target: "/users"})
	_, err := h(ctx, "/users", nil)
	test.AssertNoError(t, err)

	out := buf.String()
	test.AssertEqual(t, true, strings.Contains(out, "msg=handled"))
	test.AssertEqual(t, true, strings.Contains(out, "target=/users"))
	test.AssertEqual(t, true, strings.Contains(out, "method=GET"))
	test.AssertEqual(t, true, strings.Contains(out, "status=200"))
}
