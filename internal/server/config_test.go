package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
server:
  addr: "0.0.0.0:9090"
match:
  data_file: "/var/lib/scoreboard/match.json"
  starting_points: 30000
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9090" {
		t.Errorf("Addr = %q, want %q", cfg.Server.Addr, "0.0.0.0:9090")
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want the 30s default", cfg.Server.ReadTimeout)
	}
	if cfg.Match.DataFile != "/var/lib/scoreboard/match.json" {
		t.Errorf("DataFile = %q", cfg.Match.DataFile)
	}
	if cfg.Match.StartingPoints != 30000 {
		t.Errorf("StartingPoints = %d, want 30000", cfg.Match.StartingPoints)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("LoadConfig() should report a missing file")
	}
	if cfg.Server.Addr != "localhost:8080" {
		t.Errorf("Addr fallback = %q, want the default", cfg.Server.Addr)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() should reject malformed YAML")
	}
}
