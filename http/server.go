package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	DefaultReadBufferSize  = 4096 // 4kB
	DefaultWriteBufferSize = 4096 // 4kB

	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultBodyTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
)

// Server accepts connections and answers exactly one request on each of them.
// The zero value is usable: every verb is answered with 405 and limits take their
// defaults. Fields must not be changed once serving has started.
type Server struct {
	Name       string
	Dispatcher *Dispatcher
	// Logger receives diagnostics. nil means DefaultLogger.
	Logger *slog.Logger

	// Read and write deadlines per phase; zero disables the deadline.
	ReadHeaderTimeout time.Duration
	BodyTimeout       time.Duration
	WriteTimeout      time.Duration

	MaxHeaderBytes int
	MaxBodyBytes   int64

	// Now stamps the Date header. nil means time.Now.
	Now func() time.Time
	// ConnStateHook, when set, observes every lifecycle transition.
	ConnStateHook func(connID string, state ConnState)

	initOnce   sync.Once
	log        *slog.Logger
	disp       *Dispatcher
	instrument *serverMetrics

	mu         sync.Mutex
	listeners  map[net.Listener]struct{}
	conns      map[net.Conn]struct{}
	wg         sync.WaitGroup
	inShutdown atomic.Bool
}

// NewServer returns a server with default deadlines and limits that dispatches to
// handlers.
func NewServer(name string, handlers Handlers) *Server {
	logger := DefaultLogger()
	return &Server{
		Name:              name,
		Dispatcher:        NewDispatcher(handlers, logger),
		Logger:            logger,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		BodyTimeout:       DefaultBodyTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		MaxHeaderBytes:    DefaultMaxHeaderBytes,
		MaxBodyBytes:      DefaultMaxBodyBytes,
	}
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		s.log = s.Logger
		if s.log == nil {
			s.log = DefaultLogger()
		}
		s.disp = s.Dispatcher
		if s.disp == nil {
			s.disp = NewDispatcher(nil, s.log)
		}
		s.instrument = newServerMetrics()
	})
}

func (s *Server) logger() *slog.Logger {
	s.init()
	return s.log
}

func (s *Server) dispatcher() *Dispatcher {
	s.init()
	return s.disp
}

func (s *Server) metrics() *serverMetrics {
	s.init()
	return s.instrument
}

func (s *Server) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Server) maxHeaderBytes() int {
	if s.MaxHeaderBytes <= 0 {
		return DefaultMaxHeaderBytes
	}
	return s.MaxHeaderBytes
}

func (s *Server) maxBodyBytes() int64 {
	if s.MaxBodyBytes <= 0 {
		return DefaultMaxBodyBytes
	}
	return s.MaxBodyBytes
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if s.inShutdown.Load() {
		return ErrServerClosed
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener and serves each one on its own goroutine
// until the listener fails or Shutdown is called. ctx is the parent of every
// connection context.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if !s.trackListener(listener, true) {
		return ErrServerClosed
	}
	defer s.trackListener(listener, false)

	s.logger().InfoContext(ctx, "serving", slog.String("server", s.Name), slog.String("addr", listener.Addr().String()))

	var backoff time.Duration
	for {
		nc, err := listener.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.logger().WarnContext(ctx, "accept failed", slog.Any("error", err), slog.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		if !s.trackConn(nc, true) {
			_ = nc.Close()
			return ErrServerClosed
		}
		go func() {
			defer s.trackConn(nc, false)
			s.ServeConn(ctx, nc)
		}()
	}
}

// ServeConn runs the request/response cycle on an accepted connection and closes it.
// Hosts that own their accept loop call this once per connection.
func (s *Server) ServeConn(ctx context.Context, nc net.Conn) {
	s.newConn(ctx, nc).serve()
}

// FinalizeConn closes nc. Closing an already closed connection is not an error.
func (s *Server) FinalizeConn(nc net.Conn) error {
	err := nc.Close()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	s.logger().Debug("client disconnected", slog.String("remote", remoteAddr(nc)))
	return err
}

// Shutdown stops accepting connections and waits for in-flight ones to finish.
// When ctx expires first, the remaining connections are closed and ctx.Err() is
// returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)

	s.mu.Lock()
	var err error
	for l := range s.listeners {
		if cerr := l.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) && err == nil {
			err = cerr
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return err
	case <-ctx.Done():
		s.mu.Lock()
		for nc := range s.conns {
			_ = nc.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) trackListener(l net.Listener, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listeners == nil {
		s.listeners = make(map[net.Listener]struct{})
	}
	if add {
		if s.inShutdown.Load() {
			return false
		}
		s.listeners[l] = struct{}{}
	} else {
		delete(s.listeners, l)
	}
	return true
}

func (s *Server) trackConn(nc net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	if add {
		if s.inShutdown.Load() {
			return false
		}
		s.conns[nc] = struct{}{}
		s.wg.Add(1)
	} else {
		delete(s.conns, nc)
		s.wg.Done()
	}
	return true
}
