package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":5000" {
		t.Errorf("HTTPAddr = %q, want :5000", cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want INFO", cfg.LogLevel)
	}
	if cfg.OutboxSize != 32 {
		t.Errorf("OutboxSize = %d, want 32", cfg.OutboxSize)
	}
	if cfg.WSWriteTimeout != 3*time.Second {
		t.Errorf("WSWriteTimeout = %v, want 3s", cfg.WSWriteTimeout)
	}
	if cfg.WSPingInterval != 30*time.Second {
		t.Errorf("WSPingInterval = %v, want 30s", cfg.WSPingInterval)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoadPortOverridesAddr(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("PORT", "8123")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8123" {
		t.Errorf("HTTPAddr = %q, want :8123", cfg.HTTPAddr)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("OUTBOX_SIZE=4\nLOG_LEVEL=DEBUG\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOG_LEVEL", "WARN")
	// godotenv writes straight to the process environment.
	t.Cleanup(func() { os.Unsetenv("OUTBOX_SIZE") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutboxSize != 4 {
		t.Errorf("OutboxSize = %d, want 4 from .env", cfg.OutboxSize)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("LogLevel = %v, want WARN from environment", cfg.LogLevel)
	}
}

func TestLoadRejectsBadOutbox(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OUTBOX_SIZE", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for OUTBOX_SIZE=0")
	}
}
