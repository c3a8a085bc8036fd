// Package probe is the client side of the container health check: it asks a
// running userver for a path and reports whether the answer was a success.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultTimeout = 3 * time.Second

var ErrUnhealthy = errors.New("probe: unhealthy")

var client = &nethttp.Client{
	Transport: otelhttp.NewTransport(nethttp.DefaultTransport),
	Timeout:   DefaultTimeout,
}

// Check sends GET path to addr and fails unless the status is 2xx.
func Check(ctx context.Context, addr, path string) error {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, "http://"+addr+path, nil)
	if err != nil {
		return fmt.Errorf("probe: build request: %w", err)
	}

	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrUnhealthy, res.Status)
	}
	return nil
}
