package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meetbot/internal/config"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, path, found, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if found {
		t.Fatalf("expected found=false for missing file at %s", path)
	}
	if cfg.Session.TickSeconds != 2 {
		t.Errorf("tick_seconds default = %d, want 2", cfg.Session.TickSeconds)
	}
	if cfg.Session.LowAttendanceGraceSeconds != 300 {
		t.Errorf("low_attendance_grace_seconds default = %d, want 300", cfg.Session.LowAttendanceGraceSeconds)
	}
	if cfg.Browser.WebDriverURL != "http://127.0.0.1:9515" {
		t.Errorf("webdriver_url default = %q", cfg.Browser.WebDriverURL)
	}
}

func TestLoadReadsAndNormalizesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[paths]
output_dir = "` + dir + `/out"

[browser]
webdriver_url = "http://localhost:4444/"

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, found, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !found {
		t.Fatal("expected config file to be found")
	}
	if cfg.Browser.WebDriverURL != "http://localhost:4444" {
		t.Errorf("webdriver_url not trimmed: %q", cfg.Browser.WebDriverURL)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format not lowercased: %q", cfg.Logging.Format)
	}
	if !strings.HasSuffix(cfg.Paths.OutputDir, "/out") {
		t.Errorf("output_dir not applied: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadRejectsInvalidWebDriverURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[browser]\nwebdriver_url = \"::::\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for bad webdriver_url")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, _, found, err := config.Load(path); err != nil || !found {
		t.Fatalf("Load of sample config: found=%v err=%v", found, err)
	}
}
