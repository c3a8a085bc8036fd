package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freekieb7/userver/test"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{FileEnv, HostEnv, PortEnv, FallbackPortEnv, DebugEnv, ServeForEnv, ServiceNameEnv, EndpointEnv} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	test.AssertNoError(t, err)

	test.AssertEqual(t, "0.0.0.0", cfg.Server.Host)
	test.AssertEqual(t, 7777, cfg.Server.Port)
	test.AssertEqual(t, 10*time.Second, cfg.Server.ReadHeaderTimeout)
	test.AssertEqual(t, 8<<10, cfg.Server.MaxHeaderBytes)
	test.AssertEqual(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	test.AssertEqual(t, time.Duration(0), cfg.Server.ServeFor)
	test.AssertEqual(t, false, cfg.Debug)
	test.AssertEqual(t, false, cfg.Telemetry.Enabled())
	test.AssertEqual(t, "0.0.0.0:7777", cfg.ServerAddress())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "userver.yaml")
	test.AssertNoError(t, os.WriteFile(path, []byte(`
server:
  host: 127.0.0.1
  port: 9000
  body_timeout: 3s
  max_body_bytes: 2048
telemetry:
  endpoint: collector:4317
`), 0o600))

	t.Setenv(FileEnv, path)
	t.Setenv(PortEnv, "9100")
	t.Setenv(ServeForEnv, "1.5")
	t.Setenv(DebugEnv, "1")

	cfg, err := Load()
	test.AssertNoError(t, err)

	test.AssertEqual(t, "127.0.0.1", cfg.Server.Host)
	test.AssertEqual(t, 9100, cfg.Server.Port)
	test.AssertEqual(t, 3*time.Second, cfg.Server.BodyTimeout)
	test.AssertEqual(t, 10*time.Second, cfg.Server.WriteTimeout)
	test.AssertEqual(t, int64(2048), cfg.Server.MaxBodyBytes)
	test.AssertEqual(t, 1500*time.Millisecond, cfg.Server.ServeFor)
	test.AssertEqual(t, true, cfg.Debug)
	test.AssertEqual(t, true, cfg.Telemetry.Enabled())
	test.AssertEqual(t, "collector:4317", cfg.Telemetry.Endpoint)
}

func TestLoadFallbackPort(t *testing.T) {
	clearEnv(t)
	t.Setenv(FallbackPortEnv, "8080")

	cfg, err := Load()
	test.AssertNoError(t, err)
	test.AssertEqual(t, 8080, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "port not a number", env: map[string]string{PortEnv: "abc"}},
		{name: "port out of range", env: map[string]string{PortEnv: "70000"}},
		{name: "bad serve for", env: map[string]string{ServeForEnv: "soon"}},
		{name: "missing file", env: map[string]string{FileEnv: "/nonexistent/userver.yaml"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	test.AssertNoError(t, cfg.Validate())

	cfg.Server.BodyTimeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative timeout accepted")
	}

	cfg = Default()
	cfg.Telemetry.Endpoint = "localhost:4317"
	cfg.Telemetry.ServiceName = ""
	if err := cfg.Validate(); err == nil {
		t.Error("telemetry without service name accepted")
	}
}

func TestServerAddressIPv6(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "::1"
	test.AssertEqual(t, "[::1]:7777", cfg.ServerAddress())
}
