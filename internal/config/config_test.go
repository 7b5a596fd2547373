package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timeline.PageSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected page_size rejection")
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected logging.format rejection")
	}
}

func TestDatabasePathFallsBackToDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Global.DataDir = "/tmp/loom-test"
	cfg.Database.Path = ""
	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/loom-test", "loom.db") {
		t.Fatalf("unexpected database path: %s", got)
	}

	cfg.Database.Path = "/explicit/loom.db"
	if got := cfg.DatabasePath(); got != "/explicit/loom.db" {
		t.Fatalf("expected explicit path, got %s", got)
	}
}

func TestLoaderReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "timeline:\n  page_size: 25\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loader := NewLoader()
	loader.SetConfigFile(path)
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeline.PageSize != 25 {
		t.Fatalf("expected page_size 25, got %d", cfg.Timeline.PageSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level debug, got %s", cfg.Logging.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Database.BusyTimeoutMs != 5000 {
		t.Fatalf("expected default busy timeout, got %d", cfg.Database.BusyTimeoutMs)
	}
}

func TestLoaderExplicitMissingFileFails(t *testing.T) {
	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := loader.Load(); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}
