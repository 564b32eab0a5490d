// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", cfg.Chat.Model)
	assert.Equal(t, 100, cfg.Chat.ResponseHeadroom)
	assert.Equal(t, 60, cfg.API.TimeoutSecs)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[api]
timeout_secs = 30
max_retries = 2

[chat]
model = "gpt-3.5-turbo-16k"
response_headroom = 250

[safeguard]
model = "gpt-3.5-turbo"
concurrency = 2

[log]
level = "debug"
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.API.TimeoutSecs)
	assert.Equal(t, 2, cfg.API.MaxRetries)
	assert.Equal(t, "gpt-3.5-turbo-16k", cfg.Chat.Model)
	assert.Equal(t, 250, cfg.Chat.ResponseHeadroom)
	assert.Equal(t, "gpt-3.5-turbo", cfg.EvalModel())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[api\nbroken"), 0o644))

	_, err := LoadFrom(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EXAMINE_MODEL", "gpt-4-32k")
	t.Setenv("EXAMINE_TIMEOUT_SECS", "15")
	t.Setenv("EXAMINE_DATA_DIR", "/tmp/examine-test")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4-32k", cfg.Chat.Model)
	assert.Equal(t, 15, cfg.API.TimeoutSecs)
	assert.Equal(t, "/tmp/examine-test", cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join("/tmp/examine-test", "chat_history.jsonl"), cfg.TranscriptPath())
	assert.Equal(t, filepath.Join("/tmp/examine-test", "safety_scores.json"), cfg.ScoresPath())
	assert.Equal(t, filepath.Join("/tmp/examine-test", "sessions.db"), cfg.ArchivePath())
}

func TestValidateRejectsUnknownModel(t *testing.T) {
	cfg := Default()
	cfg.Chat.Model = "gpt-99"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.API.TimeoutSecs = 0 },
		func(c *Config) { c.API.MaxRetries = -1 },
		func(c *Config) { c.Chat.ResponseHeadroom = 0 },
		func(c *Config) { c.Safeguard.Concurrency = 0 },
		func(c *Config) { c.Log.Level = "verbose" },
		func(c *Config) { c.Safeguard.Model = "nope" },
	} {
		cfg := Default()
		mutate(cfg)
		assert.Error(t, cfg.Validate())
	}
}

func TestEvalModelFallsBackToChatModel(t *testing.T) {
	cfg := Default()
	assert.Equal(t, cfg.Chat.Model, cfg.EvalModel())
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-123")
	assert.Equal(t, "sk-test-123", APIKey())
}
