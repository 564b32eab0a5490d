// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleFunction:
		return true
	}
	return false
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleFunction:
		return "Function"
	default:
		return string(r)
	}
}

// ParseRole converts a wire-format role string into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// =============================================================================
// STATUS TYPE
// =============================================================================

// Status records the delivery outcome attached to a message. Only OK and
// WARN messages participate in outgoing completion requests; ERR messages
// stay visible in the transcript but never leave the client again.
type Status string

const (
	// StatusOK marks a message that completed normally.
	StatusOK Status = "OK"

	// StatusWarn marks an assistant message whose generation stopped for a
	// reason other than a natural end of turn (length cut-off, content
	// filter). The content is kept and resent on later turns.
	StatusWarn Status = "WARN"

	// StatusErr marks a message recorded after a failed fetch. It is
	// display-only.
	StatusErr Status = "ERR"
)

// Usable reports whether a message with this status should be included
// when building an outgoing request.
func (s Status) Usable() bool {
	return s == StatusOK || s == StatusWarn
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. Messages are immutable once
// appended to a transcript; metadata fields are set at construction.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`
	Status  Status `json:"status"`

	// Provider metadata, set on assistant messages only.
	Model            string `json:"model,omitempty"`
	FinishReason     string `json:"finish_reason,omitempty"`
	ResponseID       string `json:"response_id,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

// NewMessage creates a message with a generated ID and OK status.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewSystemMessage creates a system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// NewAssistantMessage creates an assistant message. Status defaults to OK;
// callers downgrade it to WARN when the finish reason is not a clean stop.
func NewAssistantMessage(content string) *Message {
	return NewMessage(RoleAssistant, content)
}

// NewErrorMessage creates an assistant-role message carrying an error
// notice. It is marked ERR so it is rendered but never resent upstream.
func NewErrorMessage(content string) *Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Status = StatusErr
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// Usable reports whether the message should be included in outgoing
// requests.
func (m *Message) Usable() bool {
	return m.Status.Usable()
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Content)
	if len(runes) <= maxLen {
		return m.Content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0
}

// Clone returns a copy of the message.
func (m *Message) Clone() *Message {
	cp := *m
	return &cp
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
