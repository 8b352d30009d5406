/*
Package configs is responsible for loading and parsing the application's configuration settings.

All settings come from operating system environment variables: the running
environment, listen host and port, CORS allowed origins, and the WebSocket
keep-alive ping interval and timeout.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Host        string
	Port        int

	// AllowedOrigins lists the origins accepted for cross-origin connections.
	// A single "*" entry allows any origin.
	AllowedOrigins []string

	// Transport keep-alive settings. PingInterval is how often the server
	// pings each connection; PingTimeout is how long it waits for a pong
	// before considering the connection dead.
	PingInterval time.Duration
	PingTimeout  time.Duration
}

// OriginAllowed reports whether the given Origin header value is accepted.
// An empty origin (non-browser client) is always accepted.
func (c *AppConfig) OriginAllowed(origin string) bool {
	if origin == "" {
		return true
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type
// conversions and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// Environment
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	// Host
	cfg.Host = os.Getenv("WEBSOCKET_HOST")
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}

	// Port
	portStr := os.Getenv("WEBSOCKET_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid WEBSOCKET_PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// AllowedOrigins
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// PingInterval
	cfg.PingInterval, err = loadDuration("PING_INTERVAL", 25*time.Second)
	if err != nil {
		return nil, err
	}

	// PingTimeout
	cfg.PingTimeout, err = loadDuration("PING_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	if cfg.PingInterval >= cfg.PingTimeout {
		return nil, fmt.Errorf("PING_INTERVAL (%s) must be shorter than PING_TIMEOUT (%s)", cfg.PingInterval, cfg.PingTimeout)
	}

	return cfg, nil
}

// loadDuration parses a duration environment variable, accepting either a Go
// duration string ("25s") or a bare millisecond count ("25000") for parity
// with existing deployment configs.
func loadDuration(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}

	if ms, err := strconv.Atoi(raw); err == nil {
		if ms <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %d", name, ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, d)
	}

	return d, nil
}
