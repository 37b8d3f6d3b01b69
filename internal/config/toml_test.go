package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Mode != nil {
		t.Fatalf("expected empty config for missing file")
	}
}

func TestLoadConfigParsesPracticeAndContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[practice]
mode = "expert"
time = 60
lang = "en"

[content]
http-endpoint = "https://content.example/chunk"
timeout-ms = 2500
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Mode == nil || *cfg.Practice.Mode != "expert" {
		t.Fatalf("expected mode expert, got %v", cfg.Practice.Mode)
	}
	if cfg.Practice.Time == nil || *cfg.Practice.Time != 60 {
		t.Fatalf("expected time 60, got %v", cfg.Practice.Time)
	}
	if cfg.Content.HTTPEndpoint == nil || *cfg.Content.HTTPEndpoint != "https://content.example/chunk" {
		t.Fatalf("expected http endpoint, got %v", cfg.Content.HTTPEndpoint)
	}
	if cfg.Content.TimeoutMs == nil || *cfg.Content.TimeoutMs != 2500 {
		t.Fatalf("expected timeout 2500, got %v", cfg.Content.TimeoutMs)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
