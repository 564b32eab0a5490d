// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/examineai/examine-tui/internal/safeguard"
	"github.com/examineai/examine-tui/internal/util"
)

// scoreEntry is the persisted per-principle shape. Score carries the
// wire mark: the integer, "X" for not-applicable, or "E" for a parse
// failure.
type scoreEntry struct {
	Assessment string `json:"assessment"`
	Score      string `json:"score"`
}

// =============================================================================
// SCORE STORE
// =============================================================================

// ScoreStore persists the latest evaluation result as one JSON
// document. Every save overwrites the whole file; results are never
// merged.
type ScoreStore struct {
	mu   sync.Mutex
	path string
}

// NewScoreStore creates a store writing to path.
func NewScoreStore(path string) *ScoreStore {
	return &ScoreStore{path: path}
}

// Path returns the backing file path.
func (s *ScoreStore) Path() string {
	return s.path
}

// Save writes the result, replacing any previous one. The write is
// atomic so a crash never leaves a half-written scores file.
func (s *ScoreStore) Save(result *safeguard.Result) error {
	entries := make(map[string]scoreEntry, len(result.Records))
	for principle, rec := range result.Records {
		entries[principle] = scoreEntry{
			Assessment: rec.Assessment,
			Score:      rec.Score.String(),
		}
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return &StoreError{Op: "encode", Path: s.path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := util.AtomicWriteFile(s.path, data, 0o644); err != nil {
		return &StoreError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

// Load reads the persisted result back, rebuilding the aggregate and
// counts from the stored records.
func (s *ScoreStore) Load() (*safeguard.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &StoreError{Op: "read", Path: s.path, Err: err}
	}

	var entries map[string]scoreEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &StoreError{Op: "decode", Path: s.path, Err: err}
	}

	records := make([]safeguard.Record, 0, len(entries))
	for principle, entry := range entries {
		score, err := safeguard.ParseScoreMark(entry.Score)
		if err != nil {
			return nil, &StoreError{Op: "decode", Path: s.path, Err: err}
		}
		records = append(records, safeguard.Record{
			Principle:  principle,
			Assessment: entry.Assessment,
			Score:      score,
		})
	}
	return safeguard.NewResult(records), nil
}
