// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/safeguard"
)

func TestTranscriptStoreAppendsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.jsonl")
	store := NewTranscriptStore(path)

	user := model.NewUserMessage("hello")
	reply := model.NewAssistantMessage("hi there")
	reply.Model = "gpt-4"
	reply.FinishReason = "stop"
	reply.PromptTokens = 10
	reply.CompletionTokens = 5

	require.NoError(t, store.Append("sess_test", user))
	require.NoError(t, store.Append("sess_test", reply))

	records, err := ReadTranscript(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "sess_test", records[0].SessionID)
	assert.Equal(t, "user", records[0].Role)
	assert.Equal(t, "hello", records[0].Content)
	assert.Equal(t, "OK", records[0].Status)
	assert.False(t, records[0].Timestamp.IsZero())

	assert.Equal(t, "assistant", records[1].Role)
	assert.Equal(t, "gpt-4", records[1].Model)
	assert.Equal(t, 10, records[1].PromptTokens)
}

func TestTranscriptStoreNeverRewrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.jsonl")
	store := NewTranscriptStore(path)

	require.NoError(t, store.Append("sess_test", model.NewUserMessage("first")))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Append("sess_test", model.NewErrorMessage("Error: timeout")))
	after, err := os.ReadFile(path)
	require.NoError(t, err)

	// Existing bytes are untouched; the new record is appended.
	assert.Equal(t, string(before), string(after[:len(before)]))

	records, err := ReadTranscript(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ERR", records[1].Status)
}

func TestTranscriptStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "chat.jsonl")
	store := NewTranscriptStore(path)
	require.NoError(t, store.Append("sess_test", model.NewUserMessage("x")))
}

func TestReadTranscriptMissingFile(t *testing.T) {
	_, err := ReadTranscript(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.Error(t, err)

	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "open", storeErr.Op)
}

func TestScoreStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safety_scores.json")
	store := NewScoreStore(path)

	result := safeguard.NewResult([]safeguard.Record{
		{Principle: "Honesty:", Assessment: "Truthful.", Score: safeguard.Numeric(8)},
		{Principle: "Privacy:", Assessment: "No personal data.", Score: safeguard.NotApplicable},
		{Principle: "Fairness:", Assessment: "gibberish output", Score: safeguard.EvalError},
	})
	require.NoError(t, store.Save(result))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 3, loaded.Len())

	assert.Equal(t, safeguard.Numeric(8), loaded.Records["Honesty:"].Score)
	assert.Equal(t, "Truthful.", loaded.Records["Honesty:"].Assessment)
	assert.Equal(t, safeguard.NotApplicable, loaded.Records["Privacy:"].Score)
	assert.Equal(t, safeguard.EvalError, loaded.Records["Fairness:"].Score)

	require.NotNil(t, loaded.Aggregate)
	assert.Equal(t, 8.0, *loaded.Aggregate)
	assert.Equal(t, 1, loaded.CountNotApplicable)
	assert.Equal(t, 1, loaded.CountEvalError)
}

func TestScoreStoreOverwritesWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "safety_scores.json")
	store := NewScoreStore(path)

	first := safeguard.NewResult([]safeguard.Record{
		{Principle: "Honesty:", Score: safeguard.Numeric(3)},
		{Principle: "Privacy:", Score: safeguard.Numeric(4)},
	})
	require.NoError(t, store.Save(first))

	second := safeguard.NewResult([]safeguard.Record{
		{Principle: "Honesty:", Score: safeguard.Numeric(9)},
	})
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len(), "prior principles must not survive an overwrite")
	assert.Equal(t, safeguard.Numeric(9), loaded.Records["Honesty:"].Score)
}

func TestScoreStoreLoadMissing(t *testing.T) {
	store := NewScoreStore(filepath.Join(t.TempDir(), "nope.json"))
	_, err := store.Load()
	require.Error(t, err)
}
