package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Model.Path != ".archlint/model.yaml" {
		t.Errorf("Model.Path = %q", cfg.Model.Path)
	}
	if len(cfg.Rules.Paths) == 0 {
		t.Error("Rules.Paths should not be empty")
	}
	if !cfg.Analysis.Deterministic {
		t.Error("Deterministic should default to true")
	}
	if cfg.Analysis.MaxFileSizeBytes <= 0 {
		t.Error("MaxFileSizeBytes should be positive")
	}
	if cfg.Snapshots.Dir != ".archlint/snapshots" {
		t.Errorf("Snapshots.Dir = %q", cfg.Snapshots.Dir)
	}
	if cfg.Snapshots.BaselineRef != "baseline" {
		t.Errorf("Snapshots.BaselineRef = %q", cfg.Snapshots.BaselineRef)
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
	if cfg.Logging.Format != "human" || cfg.Logging.Level != "info" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.RepoRoot != dir {
		t.Errorf("RepoRoot = %q, want %q", cfg.RepoRoot, dir)
	}
}

func TestLoadConfigReadsYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".archlint"), 0o755); err != nil {
		t.Fatal(err)
	}

	content := []byte(`version: 1
model:
  path: arch/model.yaml
rules:
  paths:
    - arch/rules.yaml
    - arch/extra.yaml
analysis:
  exclude_globs:
    - "**/generated/**"
logging:
  level: debug
`)
	if err := os.WriteFile(filepath.Join(dir, ".archlint", "config.yaml"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Model.Path != "arch/model.yaml" {
		t.Errorf("Model.Path = %q", cfg.Model.Path)
	}
	if len(cfg.Rules.Paths) != 2 {
		t.Errorf("Rules.Paths = %v", cfg.Rules.Paths)
	}
	if len(cfg.Analysis.ExcludeGlobs) != 1 || cfg.Analysis.ExcludeGlobs[0] != "**/generated/**" {
		t.Errorf("ExcludeGlobs = %v", cfg.Analysis.ExcludeGlobs)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Snapshots.Dir != ".archlint/snapshots" {
		t.Errorf("Snapshots.Dir = %q, want default", cfg.Snapshots.Dir)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Model.Path = "custom/model.yaml"
	cfg.Logging.Level = "warn"
	if err := cfg.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Model.Path != "custom/model.yaml" {
		t.Errorf("Model.Path = %q after round trip", loaded.Model.Path)
	}
	if loaded.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q after round trip", loaded.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad version", func(c *Config) { c.Version = 2 }},
		{"empty model path", func(c *Config) { c.Model.Path = "" }},
		{"no rules paths", func(c *Config) { c.Rules.Paths = nil }},
		{"negative file size", func(c *Config) { c.Analysis.MaxFileSizeBytes = -1 }},
		{"negative node limit", func(c *Config) { c.Limits.MaxNodes = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() = nil, want error")
			}
		})
	}
}
