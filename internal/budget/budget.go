// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package budget trims outgoing message sequences to fit a model's
// context window. Trimming drops a contiguous oldest-first prefix so the
// most recent context survives; the stored transcript is never touched,
// only the request being built.
package budget

import (
	"errors"

	"github.com/examineai/examine-tui/internal/model"
)

// DefaultHeadroom is the token allowance reserved for the model's reply
// when none is configured.
const DefaultHeadroom = 100

// ErrContextOverflow is returned when even the newest message cannot fit
// within the context limit. The turn must not be sent.
var ErrContextOverflow = errors.New("context overflow: conversation cannot fit the model's context window")

// =============================================================================
// TYPES
// =============================================================================

// TokenCounter counts the tokens a message contributes to a request.
// *tokens.Counter satisfies this.
type TokenCounter interface {
	CountMessage(msg *model.Message) int
}

// TrimResult holds the request-ready message sequence.
type TrimResult struct {
	// Messages is the surviving sequence, original order preserved.
	Messages []*model.Message

	// Truncated reports whether any prefix was dropped.
	Truncated bool

	// Dropped is the number of messages removed from the front.
	Dropped int

	// TokensKept is the token sum of the surviving messages.
	TokensKept int
}

// Manager applies the context budget for one model configuration.
type Manager struct {
	counter  TokenCounter
	headroom int
}

// NewManager creates a budget manager. A non-positive headroom selects
// DefaultHeadroom.
func NewManager(counter TokenCounter, headroom int) *Manager {
	if headroom <= 0 {
		headroom = DefaultHeadroom
	}
	return &Manager{counter: counter, headroom: headroom}
}

// Headroom returns the reply allowance in tokens.
func (m *Manager) Headroom() int {
	return m.headroom
}

// =============================================================================
// TRIMMING
// =============================================================================

// Trim filters messages to the sendable set and, when the token sum plus
// the reply headroom does not fit under contextLimit, drops messages from
// the oldest end until it does. Returns ErrContextOverflow when nothing
// would survive.
func (m *Manager) Trim(msgs []*model.Message, contextLimit int) (*TrimResult, error) {
	// Only valid-role, non-ERR messages ever leave the client.
	filtered := make([]*model.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role.Valid() && msg.Usable() {
			filtered = append(filtered, msg)
		}
	}

	counts := make([]int, len(filtered))
	total := 0
	for i, msg := range filtered {
		counts[i] = m.counter.CountMessage(msg)
		total += counts[i]
	}

	if total+m.headroom < contextLimit {
		return &TrimResult{
			Messages:   filtered,
			Truncated:  false,
			TokensKept: total,
		}, nil
	}

	// Drop oldest-first until the remainder plus headroom fits. The
	// surviving suffix is contiguous and keeps its original order.
	dropped := 0
	for dropped < len(filtered) && total+m.headroom >= contextLimit {
		total -= counts[dropped]
		dropped++
	}

	if dropped == len(filtered) {
		return nil, ErrContextOverflow
	}

	return &TrimResult{
		Messages:   filtered[dropped:],
		Truncated:  true,
		Dropped:    dropped,
		TokensKept: total,
	}, nil
}
