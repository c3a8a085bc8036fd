package http

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/freekieb7/userver/http"

var tracer = otel.Tracer(instrumentationName)

type serverMetrics struct {
	connections metric.Int64Counter
	active      metric.Int64UpDownCounter
	requests    metric.Int64Counter
	duration    metric.Float64Histogram
}

// newServerMetrics registers the instruments on the global meter provider. An
// instrument that fails to register falls back to a no-op one.
func newServerMetrics() *serverMetrics {
	meter := otel.Meter(instrumentationName)
	m := &serverMetrics{}

	var err error
	if m.connections, err = meter.Int64Counter("userver.server.connections",
		metric.WithDescription("Accepted connections"),
		metric.WithUnit("{connection}")); err != nil {
		otel.Handle(err)
	}
	if m.active, err = meter.Int64UpDownCounter("userver.server.active_connections",
		metric.WithDescription("Connections currently being served"),
		metric.WithUnit("{connection}")); err != nil {
		otel.Handle(err)
	}
	if m.requests, err = meter.Int64Counter("userver.server.requests",
		metric.WithDescription("Responses written, by method and status"),
		metric.WithUnit("{request}")); err != nil {
		otel.Handle(err)
	}
	if m.duration, err = meter.Float64Histogram("userver.server.request.duration",
		metric.WithDescription("Time from accept to response flushed"),
		metric.WithUnit("s")); err != nil {
		otel.Handle(err)
	}
	return m
}

func (m *serverMetrics) connOpened(ctx context.Context, server string) {
	attrs := metric.WithAttributes(attribute.String("server.name", server))
	if m.connections != nil {
		m.connections.Add(ctx, 1, attrs)
	}
	if m.active != nil {
		m.active.Add(ctx, 1, attrs)
	}
}

func (m *serverMetrics) connClosed(ctx context.Context, server string) {
	if m.active != nil {
		m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("server.name", server)))
	}
}

func (m *serverMetrics) responded(ctx context.Context, server, method string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("server.name", server),
		attribute.String("http.request.method", metricMethod(method)),
		attribute.String("http.response.status_code", strconv.Itoa(status)),
	)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

// metricMethod maps a client supplied verb onto the known HTTP methods, and
// everything else onto "_OTHER", so attribute values stay bounded.
func metricMethod(method string) string {
	switch m := strings.ToUpper(method); m {
	case MethodGet, MethodHead, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodOptions, "CONNECT", "TRACE":
		return m
	}
	return "_OTHER"
}

func startConnSpan(ctx context.Context, id string, remote string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "userver.conn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("userver.conn.id", id),
			attribute.String("client.address", remote),
		))
}
