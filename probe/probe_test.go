package probe_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/freekieb7/userver/http"
	"github.com/freekieb7/userver/probe"
	"github.com/freekieb7/userver/test"
)

func startServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	test.AssertNoError(t, err)

	srv := http.NewServer("probe-test", http.Handlers{
		"get": func(ctx context.Context, target string, body []byte) (http.Result, error) {
			if target == "/uptime" {
				return http.Result{Status: http.StatusOK, Body: "42.0 1.0\n"}, nil
			}
			return http.Result{Status: http.StatusNotFound}, nil
		},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(context.Background(), listener)
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		<-done
	})

	return listener.Addr().String()
}

func TestCheckHealthy(t *testing.T) {
	addr := startServer(t)
	test.AssertNoError(t, probe.Check(context.Background(), addr, "/uptime"))
}

func TestCheckUnhealthy(t *testing.T) {
	addr := startServer(t)

	err := probe.Check(context.Background(), addr, "/missing")
	if !errors.Is(err, probe.ErrUnhealthy) {
		t.Fatalf("expected ErrUnhealthy, got %v", err)
	}
}

func TestCheckUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	test.AssertNoError(t, err)
	addr := listener.Addr().String()
	test.AssertNoError(t, listener.Close())

	err = probe.Check(context.Background(), addr, "/uptime")
	if err == nil || errors.Is(err, probe.ErrUnhealthy) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
