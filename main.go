// Command userver runs the sample application on the userver engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freekieb7/userver/app"
	"github.com/freekieb7/userver/config"
	"github.com/freekieb7/userver/http"
	"github.com/freekieb7/userver/probe"
	"github.com/freekieb7/userver/store"
	"github.com/freekieb7/userver/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("userver", flag.ContinueOnError)
	fs.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "address to listen on")
	fs.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "port to listen on")
	fs.DurationVar(&cfg.Server.ServeFor, "serve-for", cfg.Server.ServeFor, "stop after this long, 0 serves forever")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "log debug output to stderr")
	healthcheck := fs.Bool("healthcheck", false, "probe a running server and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n", os.Args[0])
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Handle SIGINT (CTRL+C) and SIGTERM gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *healthcheck {
		return probe.Check(ctx, probeAddress(cfg), "/uptime")
	}

	otelShutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
	}()

	logger := telemetry.NewLogger(cfg)

	users := store.NewMemoryStore(nil)
	services := store.NewMemoryStore(app.DefaultServices())
	sample := app.New(users, services, logger)
	sample.UptimeFile = cfg.Server.UptimeFile

	server := &http.Server{
		Name:              cfg.Server.Name,
		Dispatcher:        http.NewDispatcher(sample.Handlers().Use(http.TraceMiddleware(), http.RecoverMiddleware()), logger),
		Logger:            logger,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		BodyTimeout:       cfg.Server.BodyTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
		MaxBodyBytes:      cfg.Server.MaxBodyBytes,
	}

	if cfg.Server.ServeFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.ServeFor)
		defer cancel()
	}

	listener, err := net.Listen("tcp", cfg.ServerAddress())
	if err != nil {
		return err
	}

	// Stop receiving signal notifications as soon as the first one arrives.
	context.AfterFunc(ctx, stop)

	return serveUntil(ctx, server, listener, logger)
}

// serveUntil serves on listener until ctx is done, then drains in-flight
// connections. Connections do not inherit the cancellation of ctx, so handlers
// still running during the drain see a live context.
func serveUntil(ctx context.Context, server *http.Server, listener net.Listener, logger *slog.Logger) error {
	serverErrorChannel := make(chan error, 1)
	go func() {
		serverErrorChannel <- server.Serve(context.WithoutCancel(ctx), listener)
	}()

	select {
	case err := <-serverErrorChannel:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.String("server", server.Name))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serverErrorChannel; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// probeAddress dials loopback when the server listens on every interface.
func probeAddress(cfg *config.Config) string {
	probeCfg := *cfg
	switch probeCfg.Server.Host {
	case "", "0.0.0.0", "::":
		probeCfg.Server.Host = "127.0.0.1"
	}
	return probeCfg.ServerAddress()
}
