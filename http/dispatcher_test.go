package http

import (
	"context"
	"errors"
	"testing"

	"github.com/freekieb7/userver/test"
)

func TestDispatcherLookupIsCaseInsensitive(t *testing.T) {
	d := NewDispatcher(Handlers{
		"get": func(ctx context.Context, target string, body []byte) (Result, error) {
			return Result{Status: StatusOK, Body: "get " + target}, nil
		},
		"POST": func(ctx context.Context, target string, body []byte) (Result, error) {
			return Result{Status: StatusCreated, Body: string(body)}, nil
		},
	}, nil)

	res := d.Dispatch(context.Background(), "GET", "/a", nil)
	test.AssertEqual(t, StatusOK, res.Status)
	test.AssertEqual(t, "get /a", res.Body)

	res = d.Dispatch(context.Background(), "post", "/b", []byte("payload"))
	test.AssertEqual(t, StatusCreated, res.Status)
	test.AssertEqual(t, "payload", res.Body)
	if res.Headers == nil {
		t.Error("expected non-nil headers")
	}
}

func TestDispatcherFallback(t *testing.T) {
	d := NewDispatcher(nil, nil)

	for _, method := range []string{"OPTIONS", "GET", ""} {
		res := d.Dispatch(context.Background(), method, "/x", nil)
		test.AssertEqual(t, StatusMethodNotAllowed, res.Status)
		test.AssertEqual(t, "method not allowed", res.Body)
		test.AssertEqual(t, 0, len(res.Headers))
	}
}

func TestDispatcherTableIsFrozen(t *testing.T) {
	handlers := Handlers{}
	d := NewDispatcher(handlers, nil)
	handlers["get"] = func(ctx context.Context, target string, body []byte) (Result, error) {
		return Result{Status: StatusOK}, nil
	}

	test.AssertEqual(t, StatusMethodNotAllowed, d.Dispatch(context.Background(), "GET", "/", nil).Status)
}

func TestDispatcherHandlerFailures(t *testing.T) {
	testCases := []struct {
		name    string
		handler Handler
	}{
		{
			name: "returned error",
			handler: func(ctx context.Context, target string, body []byte) (Result, error) {
				return Result{Status: StatusOK, Body: "secret detail"}, errors.New("boom")
			},
		},
		{
			name: "panic",
			handler: func(ctx context.Context, target string, body []byte) (Result, error) {
				var m map[string]int
				m["x"] = 1
				return Result{Status: StatusOK}, nil
			},
		},
		{
			name: "status below range",
			handler: func(ctx context.Context, target string, body []byte) (Result, error) {
				return Result{Status: 0, Body: "zero"}, nil
			},
		},
		{
			name: "status above range",
			handler: func(ctx context.Context, target string, body []byte) (Result, error) {
				return Result{Status: 600, Body: "too big"}, nil
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDispatcher(Handlers{"get": tc.handler}, nil)
			res := d.Dispatch(context.Background(), "GET", "/", nil)
			test.AssertEqual(t, StatusInternalServerError, res.Status)
			test.AssertEqual(t, "", res.Body)
		})
	}
}

func TestDispatcherUnknownStatusPassesThrough(t *testing.T) {
	d := NewDispatcher(Handlers{
		"get": func(ctx context.Context, target string, body []byte) (Result, error) {
			return Result{Status: 299, Body: "odd"}, nil
		},
	}, nil)

	res := d.Dispatch(context.Background(), "GET", "/", nil)
	test.AssertEqual(t, 299, res.Status)
	test.AssertEqual(t, "odd", res.Body)
}

func TestRequestFromContext(t *testing.T) {
	_, ok := RequestFromContext(context.Background())
	test.AssertEqual(t, false, ok)

	req := &Request{Method: "GET", Headers: Headers{"host": "h"}}
	got, ok := RequestFromContext(contextWithRequest(context.Background(), req))
	test.AssertEqual(t, true, ok)
	test.AssertEqual(t, req, got)
}
