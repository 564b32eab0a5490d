// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads application configuration with this precedence:
// built-in defaults, then ~/.examine/config.toml, then environment
// variables. The API key is environment-only (OPENAI_API_KEY) and is
// never written to or read from the config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/examineai/examine-tui/internal/model"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete application configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Chat      ChatConfig      `toml:"chat"`
	Safeguard SafeguardConfig `toml:"safeguard"`
	Storage   StorageConfig   `toml:"storage"`
	Log       LogConfig       `toml:"log"`
}

// APIConfig configures the completion endpoint client.
type APIConfig struct {
	// BaseURL is the completions endpoint root.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds one completion request.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries enables bounded retry for timeouts and rate limits.
	// Zero means single-shot.
	MaxRetries int `toml:"max_retries"`
	// RateLimitRPS caps outgoing requests per second (0 = unlimited).
	RateLimitRPS float64 `toml:"rate_limit_rps"`
	// RateLimitBurst is the limiter's burst size.
	RateLimitBurst int `toml:"rate_limit_burst"`
}

// ChatConfig configures the conversation loop.
type ChatConfig struct {
	// Model is the completion model for chat turns.
	Model string `toml:"model"`
	// ResponseHeadroom is the token allowance reserved for the reply.
	ResponseHeadroom int `toml:"response_headroom"`
}

// SafeguardConfig configures the evaluation pass.
type SafeguardConfig struct {
	// Model is the completion model used for principle evaluations.
	// Empty means the chat model.
	Model string `toml:"model"`
	// PrinciplesPath points at a JSON or YAML principles list. Empty
	// selects the built-in defaults.
	PrinciplesPath string `toml:"principles_path"`
	// Concurrency bounds the per-principle fan-out.
	Concurrency int `toml:"concurrency"`
	// WatchPrinciples reloads the principles file when it changes.
	WatchPrinciples bool `toml:"watch_principles"`
}

// StorageConfig configures the on-disk artifacts.
type StorageConfig struct {
	// DataDir holds the transcript stream, scores file, and archive.
	DataDir string `toml:"data_dir"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`
	// Path is the log file destination; empty logs to stderr.
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULTS AND LOADING
// =============================================================================

// DefaultDataDir returns ~/.examine, falling back to the working
// directory if the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".examine"
	}
	return filepath.Join(home, ".examine")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.openai.com/v1",
			TimeoutSecs:    60,
			MaxRetries:     0,
			RateLimitRPS:   0,
			RateLimitBurst: 1,
		},
		Chat: ChatConfig{
			Model:            model.DefaultModel,
			ResponseHeadroom: 100,
		},
		Safeguard: SafeguardConfig{
			Concurrency:     4,
			WatchPrinciples: true,
		},
		Storage: StorageConfig{
			DataDir: DefaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the effective configuration: defaults, the config file at
// ~/.examine/config.toml when present, then environment overrides. A
// .env file in the working directory is folded into the environment
// first.
func Load() (*Config, error) {
	return LoadFrom(filepath.Join(DefaultDataDir(), "config.toml"))
}

// LoadFrom is Load with an explicit config file path. A missing file is
// not an error; a malformed one is.
func LoadFrom(path string) (*Config, error) {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv folds EXAMINE_* environment overrides into the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("EXAMINE_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("EXAMINE_MODEL"); v != "" {
		cfg.Chat.Model = v
	}
	if v := os.Getenv("EXAMINE_PRINCIPLES"); v != "" {
		cfg.Safeguard.PrinciplesPath = v
	}
	if v := os.Getenv("EXAMINE_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("EXAMINE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EXAMINE_TIMEOUT_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSecs = n
		}
	}
	if v := os.Getenv("EXAMINE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.API.MaxRetries = n
		}
	}
}

// Validate rejects configurations the components cannot run with.
func (c *Config) Validate() error {
	if _, err := model.LookupProfile(c.Chat.Model); err != nil {
		return fmt.Errorf("chat model: %w", err)
	}
	if c.Safeguard.Model != "" {
		if _, err := model.LookupProfile(c.Safeguard.Model); err != nil {
			return fmt.Errorf("safeguard model: %w", err)
		}
	}
	if c.API.TimeoutSecs <= 0 {
		return fmt.Errorf("api timeout must be positive, got %d", c.API.TimeoutSecs)
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.API.MaxRetries)
	}
	if c.Chat.ResponseHeadroom <= 0 {
		return fmt.Errorf("response headroom must be positive, got %d", c.Chat.ResponseHeadroom)
	}
	if c.Safeguard.Concurrency <= 0 {
		return fmt.Errorf("safeguard concurrency must be positive, got %d", c.Safeguard.Concurrency)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// =============================================================================
// DERIVED PATHS AND SECRETS
// =============================================================================

// APIKey returns the completion endpoint credential from the
// environment. It is intentionally not part of the config file.
func APIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// EvalModel returns the model used for safeguard evaluations.
func (c *Config) EvalModel() string {
	if c.Safeguard.Model != "" {
		return c.Safeguard.Model
	}
	return c.Chat.Model
}

// TranscriptPath returns the JSONL transcript stream location.
func (c *Config) TranscriptPath() string {
	return filepath.Join(c.Storage.DataDir, "chat_history.jsonl")
}

// ScoresPath returns the safeguard scores file location.
func (c *Config) ScoresPath() string {
	return filepath.Join(c.Storage.DataDir, "safety_scores.json")
}

// ArchivePath returns the session archive database location.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Storage.DataDir, "sessions.db")
}
