// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/examineai/examine-tui/internal/model"
)

// TranscriptRecord is one line of the JSONL stream. Timestamps are
// serialized as ISO-8601.
type TranscriptRecord struct {
	SessionID string    `json:"session_id"`
	MessageID string    `json:"message_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`

	Model            string `json:"model,omitempty"`
	FinishReason     string `json:"finish_reason,omitempty"`
	ResponseID       string `json:"response_id,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore appends messages to a JSONL file. Records are
// written in arrival order and never rewritten; sessions interleave in
// the same stream and are told apart by their session_id.
type TranscriptStore struct {
	mu   sync.Mutex
	path string
}

// NewTranscriptStore creates a store writing to path.
func NewTranscriptStore(path string) *TranscriptStore {
	return &TranscriptStore{path: path}
}

// Path returns the backing file path.
func (s *TranscriptStore) Path() string {
	return s.path
}

// Append writes one message as a single JSONL line.
func (s *TranscriptStore) Append(sessionID string, msg *model.Message) error {
	rec := TranscriptRecord{
		SessionID:        sessionID,
		MessageID:        msg.ID,
		Role:             msg.Role.String(),
		Content:          msg.Content,
		Status:           string(msg.Status),
		Timestamp:        msg.Timestamp,
		Model:            msg.Model,
		FinishReason:     msg.FinishReason,
		ResponseID:       msg.ResponseID,
		PromptTokens:     msg.PromptTokens,
		CompletionTokens: msg.CompletionTokens,
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return &StoreError{Op: "encode", Path: s.path, Err: err}
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &StoreError{Op: "mkdir", Path: s.path, Err: err}
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &StoreError{Op: "open", Path: s.path, Err: err}
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return &StoreError{Op: "append", Path: s.path, Err: err}
	}
	return f.Sync()
}

// ReadTranscript loads every record from a JSONL transcript file, in
// file order.
func ReadTranscript(path string) ([]TranscriptRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StoreError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var records []TranscriptRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec TranscriptRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, &StoreError{Op: "decode", Path: path, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &StoreError{Op: "scan", Path: path, Err: err}
	}
	return records, nil
}
