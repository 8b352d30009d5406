package configs_test

import (
	"reflect"
	"testing"
	"time"

	"presencehub/internal/configs"
)

func clearEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{"ENVIRONMENT", "WEBSOCKET_HOST", "WEBSOCKET_PORT", "ALLOWED_ORIGINS", "PING_INTERVAL", "PING_TIMEOUT"} {
		t.Setenv(name, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := configs.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if want := []string{"http://localhost:3000"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if cfg.PingInterval != 25*time.Second {
		t.Errorf("PingInterval = %s", cfg.PingInterval)
	}
	if cfg.PingTimeout != 60*time.Second {
		t.Errorf("PingTimeout = %s", cfg.PingTimeout)
	}
}

func TestLoadConfigOriginsSplitting(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_ORIGINS", " https://app.example.com , https://admin.example.com ,")

	cfg, err := configs.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := []string{"https://app.example.com", "https://admin.example.com"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
}

func TestLoadConfigPortValidation(t *testing.T) {
	clearEnv(t)

	for _, bad := range []string{"not-a-number", "80", "70000"} {
		t.Setenv("WEBSOCKET_PORT", bad)
		if _, err := configs.LoadConfig(); err == nil {
			t.Errorf("WEBSOCKET_PORT=%q accepted", bad)
		}
	}
}

func TestLoadConfigDurations(t *testing.T) {
	clearEnv(t)

	// Go duration syntax.
	t.Setenv("PING_INTERVAL", "10s")
	t.Setenv("PING_TIMEOUT", "30s")

	cfg, err := configs.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.PingInterval != 10*time.Second || cfg.PingTimeout != 30*time.Second {
		t.Errorf("durations = %s / %s", cfg.PingInterval, cfg.PingTimeout)
	}

	// Bare millisecond counts, as older deployments set them.
	t.Setenv("PING_INTERVAL", "25000")
	t.Setenv("PING_TIMEOUT", "60000")

	cfg, err = configs.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.PingInterval != 25*time.Second || cfg.PingTimeout != 60*time.Second {
		t.Errorf("millisecond durations = %s / %s", cfg.PingInterval, cfg.PingTimeout)
	}

	// The interval must stay below the timeout.
	t.Setenv("PING_INTERVAL", "60s")
	t.Setenv("PING_TIMEOUT", "30s")
	if _, err := configs.LoadConfig(); err == nil {
		t.Error("interval >= timeout accepted")
	}

	t.Setenv("PING_INTERVAL", "oops")
	if _, err := configs.LoadConfig(); err == nil {
		t.Error("invalid duration accepted")
	}
}

func TestOriginAllowed(t *testing.T) {
	cfg := &configs.AppConfig{AllowedOrigins: []string{"https://app.example.com"}}

	if !cfg.OriginAllowed("https://app.example.com") {
		t.Error("listed origin rejected")
	}
	if cfg.OriginAllowed("https://evil.example.com") {
		t.Error("unlisted origin accepted")
	}
	if !cfg.OriginAllowed("") {
		t.Error("empty origin (non-browser client) rejected")
	}

	wildcard := &configs.AppConfig{AllowedOrigins: []string{"*"}}
	if !wildcard.OriginAllowed("https://anything.example") {
		t.Error("wildcard rejected an origin")
	}
}
