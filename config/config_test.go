package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 12345 {
		t.Errorf("expected default port 12345, got %d", cfg.Port)
	}
	if cfg.MaxWeatherLocations != 3 || cfg.MaxStockTickers != 10 {
		t.Errorf("unexpected list bounds: %d/%d", cfg.MaxWeatherLocations, cfg.MaxStockTickers)
	}
	if cfg.Device.TokenPath != "$.access_token" {
		t.Errorf("unexpected token path %q", cfg.Device.TokenPath)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development mode by default")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
port: 8080
dataFile: /var/lib/dash/data.json
device:
  baseUrl: https://display.example.com
  username: file-user
  screenId: "42"
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DEVICE_USERNAME", "env-user")
	t.Setenv("SYNC_INTERVAL", "300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected port from file, got %d", cfg.Port)
	}
	if cfg.DataFile != "/var/lib/dash/data.json" {
		t.Errorf("unexpected data file %q", cfg.DataFile)
	}
	if cfg.Device.BaseURL != "https://display.example.com" {
		t.Errorf("unexpected base url %q", cfg.Device.BaseURL)
	}
	if cfg.Device.Username != "env-user" {
		t.Errorf("expected env to override file, got %q", cfg.Device.Username)
	}
	if cfg.Device.Timeout != 5*time.Second {
		t.Errorf("unexpected device timeout %v", cfg.Device.Timeout)
	}
	if cfg.SyncInterval != 300*time.Second {
		t.Errorf("expected plain seconds to parse, got %v", cfg.SyncInterval)
	}
	// untouched by file or env
	if cfg.Device.TokenPath != "$.access_token" {
		t.Errorf("default token path lost: %q", cfg.Device.TokenPath)
	}
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not an int"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
