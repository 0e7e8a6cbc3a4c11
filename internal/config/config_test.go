package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Default()

	if cfg.Mutation.TimeoutSeconds != 10 {
		t.Errorf("Mutation.TimeoutSeconds = %d, want 10", cfg.Mutation.TimeoutSeconds)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("Web.Port = %d, want 8080", cfg.Web.Port)
	}
	if cfg.Web.Host != "127.0.0.1" {
		t.Errorf("Web.Host = %q, want 127.0.0.1", cfg.Web.Host)
	}
	if !cfg.Autosave.Enabled {
		t.Error("Autosave.Enabled = false, want true")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	content := `
[general]
data_dir = "/srv/journeyd"
database_path = "/srv/journeyd/db.sqlite"

[mutation]
timeout_seconds = 3

[autosave]
enabled = false

[web]
port = 9090
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.General.DataDir != "/srv/journeyd" {
		t.Errorf("DataDir = %q", cfg.General.DataDir)
	}
	if cfg.Mutation.Timeout() != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Mutation.Timeout())
	}
	if cfg.Autosave.Enabled {
		t.Error("Autosave.Enabled = true, want false")
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("Web.Port = %d, want 9090", cfg.Web.Port)
	}
	// Untouched sections keep defaults.
	if cfg.Web.Host != "127.0.0.1" {
		t.Errorf("Web.Host = %q, want default", cfg.Web.Host)
	}
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("Web.Port = %d, want default", cfg.Web.Port)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	got := ExpandPath("~/data")
	if got != filepath.Join(home, "data") {
		t.Errorf("ExpandPath(~/data) = %q", got)
	}

	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandPath(/abs/path) = %q", got)
	}
}
