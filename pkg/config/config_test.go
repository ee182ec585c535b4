package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
relay:
  address: 127.0.0.1
  port: 9090
  rate_limit:
    rps: 25
    burst: 50
  sweep:
    enabled: true
    cron: "0 * * * *"
    idle_period: 30m
session:
  url: ws://localhost:9090/v1/ws
  channel: demo
  user_id: 7
  typing:
    remote_expiry: 15s
    local_stop: 10s
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.Relay.RateLimit.RPS != 25 || cfg.Relay.RateLimit.Burst != 50 {
		t.Fatalf("rate limit = %+v", cfg.Relay.RateLimit)
	}
	if !cfg.Relay.Sweep.Enabled || cfg.SweepIdlePeriod() != 30*time.Minute {
		t.Fatalf("sweep = %+v", cfg.Relay.Sweep)
	}
	if cfg.Session.UserID != 7 || cfg.Session.Channel != "demo" {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if cfg.RemoteTypingExpiry() != 15*time.Second || cfg.LocalTypingStop() != 10*time.Second {
		t.Fatalf("typing windows = %v %v", cfg.RemoteTypingExpiry(), cfg.LocalTypingStop())
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.SweepIdlePeriod() != time.Hour {
		t.Fatalf("idle = %v", cfg.SweepIdlePeriod())
	}
	if cfg.RemoteTypingExpiry() != 0 || cfg.LocalTypingStop() != 0 {
		t.Fatalf("typing defaults leaked: %v %v", cfg.RemoteTypingExpiry(), cfg.LocalTypingStop())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PUBCHAT_ADDR", "0.0.0.0:9999")
	t.Setenv("PUBCHAT_RATE_RPS", "12.5")
	t.Setenv("PUBCHAT_RATE_BURST", "20")
	t.Setenv("PUBCHAT_CHANNEL", "ops")
	t.Setenv("PUBCHAT_USER_ID", "42")
	t.Setenv("PUBCHAT_SWEEP_CRON", "*/5 * * * *")

	var cfg Config
	if !LoadEnvOverrides(&cfg) {
		t.Fatalf("env not detected")
	}
	if cfg.Addr() != "0.0.0.0:9999" {
		t.Fatalf("addr = %q", cfg.Addr())
	}
	if cfg.Relay.RateLimit.RPS != 12.5 || cfg.Relay.RateLimit.Burst != 20 {
		t.Fatalf("rate limit = %+v", cfg.Relay.RateLimit)
	}
	if cfg.Session.Channel != "ops" || cfg.Session.UserID != 42 {
		t.Fatalf("session = %+v", cfg.Session)
	}
	if !cfg.Relay.Sweep.Enabled || cfg.Relay.Sweep.Cron != "*/5 * * * *" {
		t.Fatalf("sweep = %+v", cfg.Relay.Sweep)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("./flagged.yaml", true); got != "./flagged.yaml" {
		t.Fatalf("flag path ignored: %q", got)
	}
	t.Setenv("PUBCHAT_CONFIG", "/etc/pubchat.yaml")
	if got := ResolveConfigPath("./default.yaml", false); got != "/etc/pubchat.yaml" {
		t.Fatalf("env path ignored: %q", got)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	var cfg Config
	cfg.Relay.Sweep.IdlePeriod = "soon"
	if cfg.SweepIdlePeriod() != time.Hour {
		t.Fatalf("bad duration accepted")
	}
}
