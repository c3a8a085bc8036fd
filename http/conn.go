package http

import (
	"bufio"
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ConnState is the lifecycle position of a connection. Every connection walks
// forward through these states exactly once and always ends in StateClosed.
type ConnState int

const (
	StateAwaitingRequestLine ConnState = iota
	StateReadingHeaders
	StateReadingBody
	StateDispatching
	StateWritingResponse
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateAwaitingRequestLine:
		return "AWAITING_REQUEST_LINE"
	case StateReadingHeaders:
		return "READING_HEADERS"
	case StateReadingBody:
		return "READING_BODY"
	case StateDispatching:
		return "DISPATCHING"
	case StateWritingResponse:
		return "WRITING_RESPONSE"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// conn serves a single request on an accepted socket. It is discarded once closed.
type conn struct {
	srv    *Server
	nc     net.Conn
	br     *bufio.Reader
	bw     *bufio.Writer
	rr     RequestReader
	id     string
	logger *slog.Logger

	ctx     context.Context
	span    trace.Span
	started time.Time

	state  ConnState
	req    *Request
	result Result
}

type stateFn func(*conn) stateFn

func (s *Server) newConn(ctx context.Context, nc net.Conn) *conn {
	id := uuid.NewString()
	c := &conn{
		srv: s,
		nc:  nc,
		br:  bufio.NewReaderSize(nc, DefaultReadBufferSize),
		bw:  bufio.NewWriterSize(nc, DefaultWriteBufferSize),
		rr: RequestReader{
			MaxHeaderBytes: s.maxHeaderBytes(),
			MaxBodyBytes:   s.maxBodyBytes(),
		},
		id:      id,
		logger:  s.logger().With(slog.String("conn", id)),
		started: time.Now(),
	}
	c.ctx, c.span = startConnSpan(ctx, id, remoteAddr(nc))
	return c
}

func (c *conn) serve() {
	c.srv.metrics().connOpened(c.ctx, c.srv.Name)
	c.logger.DebugContext(c.ctx, "new client connected", slog.String("remote", remoteAddr(c.nc)))

	for state := awaitRequestLine; state != nil; {
		state = state(c)
	}
}

func (c *conn) enter(s ConnState) {
	c.state = s
	if hook := c.srv.ConnStateHook; hook != nil {
		hook(c.id, s)
	}
}

// fail skips straight to writing an empty response with the status matching err.
func (c *conn) fail(err error) stateFn {
	status := StatusForError(err)
	c.logger.DebugContext(c.ctx, "request rejected", slog.Int("status", status), slog.Any("error", err))
	c.span.RecordError(err)
	c.result = Result{Status: status, Headers: Headers{}}
	return writeResponse
}

func awaitRequestLine(c *conn) stateFn {
	c.enter(StateAwaitingRequestLine)
	c.setReadDeadline(c.srv.ReadHeaderTimeout)
	return readHeaders
}

func readHeaders(c *conn) stateFn {
	c.enter(StateReadingHeaders)

	req, err := c.rr.ReadHeader(c.br)
	if req != nil {
		c.req = req
		c.logger.DebugContext(c.ctx, "request line",
			slog.String("method", req.Method),
			slog.String("target", req.Target),
			slog.String("proto", req.Proto))
		method := metricMethod(req.Method)
		c.span.SetAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", req.Target))
		if method != req.Method {
			c.span.SetAttributes(attribute.String("http.request.method_original", req.Method))
		}
	}
	if errors.Is(err, ErrNoRequest) {
		c.logger.DebugContext(c.ctx, "client sent nothing")
		return closeConn
	}
	if err != nil {
		return c.fail(err)
	}
	c.logger.DebugContext(c.ctx, "headers", slog.Any("headers", map[string]string(req.Headers)))

	if req.ContentLength > 0 {
		return readBody
	}
	if req.ExpectsBody() {
		c.logger.DebugContext(c.ctx, "no content-length, dispatching without body")
	}
	return dispatch
}

func readBody(c *conn) stateFn {
	c.enter(StateReadingBody)
	c.setReadDeadline(c.srv.BodyTimeout)

	if err := c.rr.ReadBody(c.br, c.req); err != nil {
		return c.fail(err)
	}
	c.logger.DebugContext(c.ctx, "body received", slog.Int64("content_length", c.req.ContentLength))
	return dispatch
}

func dispatch(c *conn) stateFn {
	c.enter(StateDispatching)

	ctx := contextWithRequest(c.ctx, c.req)
	c.result = c.srv.dispatcher().Dispatch(ctx, c.req.Method, c.req.Target, c.req.Body)
	return writeResponse
}

func writeResponse(c *conn) stateFn {
	c.enter(StateWritingResponse)
	if c.srv.WriteTimeout > 0 {
		_ = c.nc.SetWriteDeadline(time.Now().Add(c.srv.WriteTimeout))
	}

	res := c.result
	if _, err := c.bw.WriteString(Preamble(res.Status, res.Body, res.Headers, c.srv.now())); err != nil {
		c.writeFailed(err)
		return closeConn
	}
	if _, err := c.bw.WriteString(res.Body); err != nil {
		c.writeFailed(err)
		return closeConn
	}
	if err := c.bw.Flush(); err != nil {
		c.writeFailed(err)
		return closeConn
	}

	method := ""
	if c.req != nil {
		method = c.req.Method
	}
	c.srv.metrics().responded(c.ctx, c.srv.Name, method, res.Status, time.Since(c.started))
	c.span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	if res.Status >= StatusInternalServerError {
		c.span.SetStatus(codes.Error, StatusText(res.Status))
	}
	c.logger.DebugContext(c.ctx, "response written",
		slog.Int("status", res.Status),
		slog.Int("content_length", len(res.Body)))
	return closeConn
}

func (c *conn) writeFailed(err error) {
	c.logger.DebugContext(c.ctx, "write failed", slog.Any("error", err))
	c.span.RecordError(err)
	c.span.SetStatus(codes.Error, "write failed")
}

func closeConn(c *conn) stateFn {
	c.enter(StateClosed)
	if err := c.srv.FinalizeConn(c.nc); err != nil {
		c.logger.DebugContext(c.ctx, "close failed", slog.Any("error", err))
	}
	c.srv.metrics().connClosed(c.ctx, c.srv.Name)
	c.span.End()
	return nil
}

func (c *conn) setReadDeadline(d time.Duration) {
	if d > 0 {
		_ = c.nc.SetReadDeadline(time.Now().Add(d))
	}
}

func remoteAddr(nc net.Conn) string {
	if addr := nc.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
