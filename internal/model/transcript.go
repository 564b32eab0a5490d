// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript holds the ordered history of a chat session. It is
// append-only: messages are never mutated or removed once added, so a
// failed exchange stays visible alongside everything that followed it.
type Transcript struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Model configuration
	Model string `json:"model"`

	// Messages, oldest first.
	Messages []*Message `json:"messages"`
}

// NewTranscript creates an empty transcript with a generated ID.
func NewTranscript(modelID string) *Transcript {
	now := time.Now()
	return &Transcript{
		ID:        "sess_" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Model:     modelID,
		Messages:  make([]*Message, 0),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(msg *Message) {
	t.Messages = append(t.Messages, msg)
	t.UpdatedAt = time.Now()
	t.updateTitle()
}

// AppendUser creates and appends a user message.
func (t *Transcript) AppendUser(content string) *Message {
	msg := NewUserMessage(content)
	t.Append(msg)
	return msg
}

// AppendSystem creates and appends a system message.
func (t *Transcript) AppendSystem(content string) *Message {
	msg := NewSystemMessage(content)
	t.Append(msg)
	return msg
}

// Last returns the most recent message, or nil if empty.
func (t *Transcript) Last() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return t.Messages[len(t.Messages)-1]
}

// LastAssistant returns the most recent assistant message, or nil.
func (t *Transcript) LastAssistant() *Message {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAssistant {
			return t.Messages[i]
		}
	}
	return nil
}

// LastUsableAssistant returns the most recent assistant message that is
// eligible for evaluation (status OK or WARN), or nil.
func (t *Transcript) LastUsableAssistant() *Message {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		msg := t.Messages[i]
		if msg.Role == RoleAssistant && msg.Usable() {
			return msg
		}
	}
	return nil
}

// Usable returns the messages that participate in outgoing requests:
// conversational roles with status OK or WARN, in transcript order.
func (t *Transcript) Usable() []*Message {
	out := make([]*Message, 0, len(t.Messages))
	for _, msg := range t.Messages {
		if msg.Usable() {
			out = append(out, msg)
		}
	}
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// IsEmpty returns true if there are no messages.
func (t *Transcript) IsEmpty() bool {
	return len(t.Messages) == 0
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// updateTitle auto-generates a title from the first user message if not set.
func (t *Transcript) updateTitle() {
	if t.Title != "" {
		return
	}
	for _, msg := range t.Messages {
		if msg.Role == RoleUser {
			t.Title = msg.Preview(50)
			return
		}
	}
}

// GetTitle returns the transcript title or a default.
func (t *Transcript) GetTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return "New Session"
}

// =============================================================================
// SERIALIZATION HELPERS
// =============================================================================

// Meta holds lightweight metadata for session listings.
type Meta struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetMeta returns metadata about the transcript.
func (t *Transcript) GetMeta() Meta {
	return Meta{
		ID:           t.ID,
		Title:        t.GetTitle(),
		Model:        t.Model,
		MessageCount: len(t.Messages),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// Clone creates a deep copy of the transcript.
func (t *Transcript) Clone() *Transcript {
	clone := &Transcript{
		ID:        t.ID,
		Title:     t.Title,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Model:     t.Model,
		Messages:  make([]*Message, len(t.Messages)),
	}
	for i, msg := range t.Messages {
		clone.Messages[i] = msg.Clone()
	}
	return clone
}
