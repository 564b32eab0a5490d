// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive stores completed sessions in a local SQLite database
// so past conversations can be listed and reopened. The JSONL stream in
// the storage package is the write-ahead record of the live session;
// the archive is the queryable index over finished ones.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/examineai/examine-tui/internal/model"
)

// ErrNotFound is returned when a session ID is not in the archive.
var ErrNotFound = errors.New("session not found")

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	model      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id                TEXT PRIMARY KEY,
	session_id        TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq               INTEGER NOT NULL,
	role              TEXT NOT NULL,
	content           TEXT NOT NULL,
	status            TEXT NOT NULL,
	timestamp         TIMESTAMP NOT NULL,
	model             TEXT,
	finish_reason     TEXT,
	response_id       TEXT,
	prompt_tokens     INTEGER,
	completion_tokens INTEGER
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
`

// =============================================================================
// ARCHIVE
// =============================================================================

// Archive wraps the SQLite session store.
type Archive struct {
	db *sql.DB
}

// Open opens (and if needed creates) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// SaveTranscript stores a transcript, replacing any prior archive entry
// for the same session ID.
func (a *Archive) SaveTranscript(ctx context.Context, t *model.Transcript) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, model, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   model = excluded.model,
		   updated_at = excluded.updated_at`,
		t.ID, t.GetTitle(), t.Model, t.CreatedAt, t.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	// Re-insert the message set wholesale; the transcript is the source
	// of truth for its own messages.
	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages
		 (id, session_id, seq, role, content, status, timestamp,
		  model, finish_reason, response_id, prompt_tokens, completion_tokens)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for seq, msg := range t.Messages {
		if _, err := stmt.ExecContext(ctx,
			msg.ID, t.ID, seq, msg.Role.String(), msg.Content, string(msg.Status),
			msg.Timestamp, msg.Model, msg.FinishReason, msg.ResponseID,
			msg.PromptTokens, msg.CompletionTokens,
		); err != nil {
			return fmt.Errorf("failed to save message %s: %w", msg.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteSession removes a session and its messages.
func (a *Archive) DeleteSession(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// ListSessions returns archived session metadata, most recent first.
func (a *Archive) ListSessions(ctx context.Context) ([]model.Meta, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT s.id, s.title, s.model, s.created_at, s.updated_at,
		        (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id)
		 FROM sessions s
		 ORDER BY s.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var metas []model.Meta
	for rows.Next() {
		var m model.Meta
		if err := rows.Scan(&m.ID, &m.Title, &m.Model, &m.CreatedAt, &m.UpdatedAt, &m.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// LoadTranscript rebuilds a full transcript from the archive.
func (a *Archive) LoadTranscript(ctx context.Context, id string) (*model.Transcript, error) {
	t := &model.Transcript{ID: id}
	err := a.db.QueryRowContext(ctx,
		`SELECT title, model, created_at, updated_at FROM sessions WHERE id = ?`, id,
	).Scan(&t.Title, &t.Model, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT id, role, content, status, timestamp,
		        model, finish_reason, response_id, prompt_tokens, completion_tokens
		 FROM messages WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			msg       model.Message
			role      string
			status    string
			timestamp time.Time
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &status, &timestamp,
			&msg.Model, &msg.FinishReason, &msg.ResponseID,
			&msg.PromptTokens, &msg.CompletionTokens,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Status = model.Status(status)
		msg.Timestamp = timestamp
		t.Messages = append(t.Messages, &msg)
	}
	return t, rows.Err()
}
