// Package config loads tagger settings from TOML or YAML files with
// environment overrides.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kittclouds/postag/pkg/tagger"
)

// Config holds all application configuration.
type Config struct {
	Mode       string `toml:"mode" yaml:"mode"`
	ModelPath  string `toml:"model_path" yaml:"model_path"`
	CorpusPath string `toml:"corpus_path" yaml:"corpus_path"`
	// DBPath enables persistence when set.
	DBPath    string `toml:"db_path" yaml:"db_path"`
	Workers   int    `toml:"workers" yaml:"workers"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from path and applies defaults and environment
// overrides. An empty path loads defaults only. The format is chosen by file
// extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		if err := decodeFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("failed to decode TOML file: %w", err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Mode == "" {
		cfg.Mode = tagger.ModeEnhanced.String()
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if v := os.Getenv("POSTAG_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("POSTAG_MODEL"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("POSTAG_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("POSTAG_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := tagger.ParseMode(c.Mode); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// TaggerMode returns the parsed mode.
func (c *Config) TaggerMode() (tagger.Mode, error) {
	return tagger.ParseMode(c.Mode)
}

func (c *Config) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to w at the configured level and format.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
