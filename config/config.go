// Package config loads the settings of the userver binary from defaults, an
// optional YAML file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	FileEnv         = "USERVER_CONFIG"
	HostEnv         = "USERVER_HOST"
	PortEnv         = "USERVER_PORT"
	FallbackPortEnv = "PORT"
	DebugEnv        = "USERVER_DEBUG"
	ServeForEnv     = "USERVER_SERVE_FOR"
	ServiceNameEnv  = "OTEL_SERVICE_NAME"
	EndpointEnv     = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Debug     bool            `yaml:"debug"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	BodyTimeout       time.Duration `yaml:"body_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`

	MaxHeaderBytes int   `yaml:"max_header_bytes"`
	MaxBodyBytes   int64 `yaml:"max_body_bytes"`

	// ServeFor stops the server after the given duration. Zero serves forever.
	ServeFor   time.Duration `yaml:"serve_for"`
	UptimeFile string        `yaml:"uptime_file"`
}

type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	// Endpoint is the OTLP gRPC collector address. Empty disables export.
	Endpoint       string        `yaml:"endpoint"`
	Insecure       bool          `yaml:"insecure"`
	ExportInterval time.Duration `yaml:"export_interval"`
}

func (t TelemetryConfig) Enabled() bool {
	return t.Endpoint != ""
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:              "userver",
			Host:              "0.0.0.0",
			Port:              7777,
			ReadHeaderTimeout: 10 * time.Second,
			BodyTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			MaxHeaderBytes:    8 << 10,
			MaxBodyBytes:      1 << 20,
			UptimeFile:        "/proc/uptime",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "userver",
			Insecure:       true,
			ExportInterval: 15 * time.Second,
		},
	}
}

func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(HostEnv); v != "" {
		c.Server.Host = v
	}

	port := os.Getenv(PortEnv)
	if port == "" {
		port = os.Getenv(FallbackPortEnv)
	}
	if port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("config: port %q: %w", port, err)
		}
		c.Server.Port = n
	}

	if v := os.Getenv(DebugEnv); v != "" {
		c.Debug = true
	}

	if v := os.Getenv(ServeForEnv); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("config: serve for %q: %w", v, err)
		}
		c.Server.ServeFor = d
	}

	if v := os.Getenv(ServiceNameEnv); v != "" {
		c.Telemetry.ServiceName = v
	}
	if v := os.Getenv(EndpointEnv); v != "" {
		c.Telemetry.Endpoint = v
	}

	return nil
}

// parseDuration accepts a Go duration or a bare number of seconds.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Server.Port))
	}
	if c.Server.ReadHeaderTimeout < 0 || c.Server.BodyTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	if c.Server.MaxHeaderBytes < 0 {
		errs = append(errs, fmt.Errorf("max header bytes must not be negative: %d", c.Server.MaxHeaderBytes))
	}
	if c.Server.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("max body bytes must not be negative: %d", c.Server.MaxBodyBytes))
	}
	if c.Server.ServeFor < 0 {
		errs = append(errs, fmt.Errorf("serve for must not be negative: %s", c.Server.ServeFor))
	}
	if c.Telemetry.Enabled() && c.Telemetry.ServiceName == "" {
		errs = append(errs, errors.New("telemetry needs a service name"))
	}

	return errors.Join(errs...)
}

// ServerAddress returns the host:port the server listens on.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
