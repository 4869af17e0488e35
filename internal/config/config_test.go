package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(DSNEnv, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}
	if !strings.HasSuffix(cfg.Storage.Path, filepath.Join(".deck", "deck.db")) {
		t.Errorf("path = %q, want suffix .deck/deck.db", cfg.Storage.Path)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("level = %q, want info", cfg.Log.Level)
	}
	if cfg.RefreshInterval() != 30*time.Second {
		t.Errorf("refresh = %v, want 30s", cfg.RefreshInterval())
	}
	if cfg.Chaser.Sender != "Best regards" {
		t.Errorf("sender = %q, want Best regards", cfg.Chaser.Sender)
	}
}

func TestWriteDefaultThenLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(DSNEnv, "")
	path := filepath.Join(home, ".deck", "config.yaml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("failed to write default: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Error("expected error when config already exists")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("force overwrite failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if cfg.Storage.Path != filepath.Join(home, ".deck", "deck.db") {
		t.Errorf("path = %q, want ~ expanded", cfg.Storage.Path)
	}
	if cfg.Log.File != filepath.Join(home, ".deck", "deck.log") {
		t.Errorf("log file = %q, want ~ expanded", cfg.Log.File)
	}
}

func TestLoad_Overrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(DSNEnv, "")
	path := filepath.Join(home, "config.yaml")

	content := `
storage:
  driver: Memory
log:
  level: DEBUG
tui:
  refresh: 5s
chaser:
  sender: "Cheers,\nOps"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Log.Level)
	}
	if cfg.RefreshInterval() != 5*time.Second {
		t.Errorf("refresh = %v, want 5s", cfg.RefreshInterval())
	}
	if cfg.Chaser.Sender != "Cheers,\nOps" {
		t.Errorf("sender = %q", cfg.Chaser.Sender)
	}
}

func TestLoad_PostgresDSN(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(DSNEnv, "")
	if _, err := Load(path); err == nil {
		t.Error("expected error for postgres without dsn")
	}

	t.Setenv(DSNEnv, "postgres://localhost/deck")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if cfg.Storage.DSN != "postgres://localhost/deck" {
		t.Errorf("dsn = %q, want env value", cfg.Storage.DSN)
	}
}

func TestLoad_Invalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(DSNEnv, "")

	tests := []struct {
		name    string
		content string
	}{
		{"bad driver", "storage:\n  driver: mongo\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad refresh", "tui:\n  refresh: soon\n"},
		{"bad yaml", "storage: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}
