package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown timeout = %v", cfg.ShutdownTimeout)
	}
	if cfg.SchedulingHorizon != 17520*time.Hour {
		t.Fatalf("scheduling horizon = %v", cfg.SchedulingHorizon)
	}
	if cfg.WorkerConcurrency != 5 {
		t.Fatalf("worker concurrency = %d", cfg.WorkerConcurrency)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AGENDLY_HTTP_ADDR", "127.0.0.1:9090")
	t.Setenv("AGENDLY_SCHEDULING_MAX_HORIZON", "720h")
	t.Setenv("AGENDLY_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.HTTPAddr != "127.0.0.1:9090" {
		t.Fatalf("http addr = %q", cfg.HTTPAddr)
	}
	if cfg.SchedulingHorizon != 720*time.Hour {
		t.Fatalf("scheduling horizon = %v", cfg.SchedulingHorizon)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("AGENDLY_SHUTDOWN_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unparseable duration")
	}
}
