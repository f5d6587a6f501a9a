package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the complete workspace configuration, loaded from
// .archlint/config.yaml
type Config struct {
	Version  int    `json:"version" yaml:"version" mapstructure:"version"`
	RepoRoot string `json:"repo_root" yaml:"repo_root" mapstructure:"repo_root"`

	Model     ModelConfig     `json:"model" yaml:"model" mapstructure:"model"`
	Rules     RulesConfig     `json:"rules" yaml:"rules" mapstructure:"rules"`
	Analysis  AnalysisConfig  `json:"analysis" yaml:"analysis" mapstructure:"analysis"`
	Limits    LimitsConfig    `json:"limits" yaml:"limits" mapstructure:"limits"`
	Snapshots SnapshotsConfig `json:"snapshots" yaml:"snapshots" mapstructure:"snapshots"`
	History   HistoryConfig   `json:"history" yaml:"history" mapstructure:"history"`
	Logging   LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// ModelConfig points at the architecture model document
type ModelConfig struct {
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// RulesConfig contains rule document discovery settings
type RulesConfig struct {
	Paths []string `json:"paths" yaml:"paths" mapstructure:"paths"`
}

// AnalysisConfig contains analyzer scope and safety settings
type AnalysisConfig struct {
	IncludePaths     []string `json:"include_paths" yaml:"include_paths" mapstructure:"include_paths"`
	ExcludeGlobs     []string `json:"exclude_globs" yaml:"exclude_globs" mapstructure:"exclude_globs"`
	MaxFileSizeBytes int64    `json:"max_file_size_bytes" yaml:"max_file_size_bytes" mapstructure:"max_file_size_bytes"`
	Deterministic    bool     `json:"deterministic" yaml:"deterministic" mapstructure:"deterministic"`
}

// LimitsConfig caps graph size to protect against runaway scans
type LimitsConfig struct {
	MaxNodes int `json:"max_nodes" yaml:"max_nodes" mapstructure:"max_nodes"`
	MaxEdges int `json:"max_edges" yaml:"max_edges" mapstructure:"max_edges"`
}

// SnapshotsConfig contains snapshot store settings
type SnapshotsConfig struct {
	Dir         string `json:"dir" yaml:"dir" mapstructure:"dir"`
	AutoSave    bool   `json:"auto_save" yaml:"auto_save" mapstructure:"auto_save"`
	BaselineRef string `json:"baseline_ref" yaml:"baseline_ref" mapstructure:"baseline_ref"`
}

// HistoryConfig contains the run-history database settings
type HistoryConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" yaml:"format" mapstructure:"format"`
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Model: ModelConfig{
			Path: ".archlint/model.yaml",
		},
		Rules: RulesConfig{
			Paths: []string{".archlint/rules.yaml"},
		},
		Analysis: AnalysisConfig{
			IncludePaths:     []string{},
			ExcludeGlobs:     []string{},
			MaxFileSizeBytes: 2_000_000,
			Deterministic:    true,
		},
		Limits: LimitsConfig{
			MaxNodes: 0,
			MaxEdges: 0,
		},
		Snapshots: SnapshotsConfig{
			Dir:         ".archlint/snapshots",
			AutoSave:    true,
			BaselineRef: "baseline",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    ".archlint/archlint.db",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .archlint/config.yaml. A missing
// config file yields the defaults, not an error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("repo_root", ".")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(repoRoot, ".archlint"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := DefaultConfig()
			cfg.RepoRoot = repoRoot
			return cfg, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.RepoRoot == "." || cfg.RepoRoot == "" {
		cfg.RepoRoot = repoRoot
	}
	return cfg, nil
}

// Save writes the configuration to .archlint/config.yaml
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".archlint")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0o644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Model.Path == "" {
		return &ConfigError{Field: "model.path", Message: "model path must not be empty"}
	}
	if len(c.Rules.Paths) == 0 {
		return &ConfigError{Field: "rules.paths", Message: "at least one rules path is required"}
	}
	if c.Analysis.MaxFileSizeBytes < 0 {
		return &ConfigError{Field: "analysis.max_file_size_bytes", Message: "must not be negative"}
	}
	if c.Limits.MaxNodes < 0 || c.Limits.MaxEdges < 0 {
		return &ConfigError{Field: "limits", Message: "limits must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
