// Ensemble - Wardrobe Intelligence and Outfit Assembly Engine
// Copyright 2026 Wardrobe Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wardrobelabs/ensemble

// Package config provides layered host configuration using Koanf v2.
//
// Configuration is loaded in three layers with clear precedence:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if present)
//  3. Environment variables: override any setting
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/wardrobelabs/ensemble/internal/logging"
	"github.com/wardrobelabs/ensemble/internal/outfit"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ensemble/config.yaml",
	"/etc/ensemble/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the host process configuration.
type Config struct {
	// Engine configures the assembly engine.
	Engine outfit.Config `koanf:"engine"`

	// Rules configures rule-set loading.
	Rules RulesConfig `koanf:"rules"`

	// Logging configures log output.
	Logging LoggingConfig `koanf:"logging"`
}

// RulesConfig configures rule-set loading.
type RulesConfig struct {
	// Path is an optional YAML rule-set file. Empty means the built-in
	// default rule set.
	Path string `koanf:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Engine: *outfit.DefaultConfig(),
		Rules:  RulesConfig{Path: ""},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources.
//
// Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, fmt.Errorf("engine configuration invalid: %w", err)
	}

	return cfg, nil
}

// LoggingSettings converts the logging section to a logging.Config.
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Explicit path wins
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - ENGINE_BEAM_WIDTH -> engine.search.beam_width
//   - ENGINE_GENERATE_BUDGET -> engine.budgets.generate
//   - RULES_PATH -> rules.path
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Engine search mappings
		"engine_beam_width":       "engine.search.beam_width",
		"engine_parallel_scoring": "engine.search.parallel_scoring",
		"engine_max_alternatives": "engine.search.max_alternatives",

		// Engine retrieval mappings
		"engine_anchor_k": "engine.retrieval.anchor_k",
		"engine_slot_k":   "engine.retrieval.slot_k",

		// Engine budget mappings
		"engine_generate_budget": "engine.budgets.generate",
		"engine_replace_budget":  "engine.budgets.replace",

		// Engine cache mappings
		"engine_cache_enabled":     "engine.cache.enabled",
		"engine_cache_max_entries": "engine.cache.max_entries",
		"engine_cache_ttl":         "engine.cache.ttl",

		// Engine breaker mappings
		"engine_breaker_enabled":           "engine.breaker.enabled",
		"engine_breaker_failure_threshold": "engine.breaker.failure_threshold",
		"engine_breaker_open_timeout":      "engine.breaker.open_timeout",

		// Engine backpressure mappings
		"engine_max_inflight": "engine.max_inflight",
		"engine_seed":         "engine.seed",

		// Rule-set mappings
		"rules_path": "rules.path",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so stray environment variables never
	// pollute the config.
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when swapping configuration
// during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
