package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"testing"

	"github.com/freekieb7/userver/config"
	"github.com/freekieb7/userver/http"
	"github.com/freekieb7/userver/test"
)

func TestProbeAddress(t *testing.T) {
	cfg := config.Default()
	test.AssertEqual(t, "127.0.0.1:7777", probeAddress(cfg))
	test.AssertEqual(t, "0.0.0.0", cfg.Server.Host)

	cfg.Server.Host = "10.0.0.2"
	cfg.Server.Port = 9000
	test.AssertEqual(t, "10.0.0.2:9000", probeAddress(cfg))
}

func TestServeUntilDrainsInFlightRequests(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	test.AssertNoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	handlerCtxErr := make(chan error, 1)
	server := http.NewServer("drain", http.Handlers{
		"get": func(ctx context.Context, target string, body []byte) (http.Result, error) {
			close(started)
			<-release
			handlerCtxErr <- ctx.Err()
			return http.Result{Status: http.StatusOK, Body: "done"}, nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- serveUntil(ctx, server, listener, slog.New(slog.DiscardHandler))
	}()

	conn, err := net.Dial("tcp", listener.Addr().String())
	test.AssertNoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	test.AssertNoError(t, err)

	<-started
	cancel()
	close(release)

	test.AssertNoError(t, <-handlerCtxErr)

	resp, err := io.ReadAll(conn)
	test.AssertNoError(t, err)
	test.AssertEqual(t, true, strings.HasPrefix(string(resp), "HTTP/1.1 200 OK\r\n"))
	test.AssertEqual(t, true, strings.HasSuffix(string(resp), "\r\n\r\ndone"))

	test.AssertNoError(t, <-serveErr)
}
