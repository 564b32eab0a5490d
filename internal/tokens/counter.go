// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokens provides deterministic token counting for budget
// accounting. Counts are estimates keyed to a model's tokenizer encoding;
// they only need to be stable and conservative, not exact, because the
// budget keeps headroom between the estimate and the hard context limit.
package tokens

import (
	"fmt"

	"github.com/examineai/examine-tui/internal/model"
)

// perMessageOverhead accounts for the wire framing around each message
// (role marker, separators, priming tokens).
const perMessageOverhead = 4

// =============================================================================
// COUNTER TYPE
// =============================================================================

// Counter estimates token counts for a specific tokenizer encoding.
// The same input always yields the same count.
type Counter struct {
	encoding string
}

// NewCounter creates a counter for the given encoding name. The encoding
// must be one declared by a catalog profile.
func NewCounter(encoding string) (*Counter, error) {
	switch encoding {
	case "cl100k_base":
		return &Counter{encoding: encoding}, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ForModel creates a counter for a model's declared encoding.
func ForModel(modelID string) (*Counter, error) {
	profile, err := model.LookupProfile(modelID)
	if err != nil {
		return nil, err
	}
	return NewCounter(profile.Encoding)
}

// Encoding returns the encoding name this counter was built for.
func (c *Counter) Encoding() string {
	return c.encoding
}

// =============================================================================
// COUNTING
// =============================================================================

// CountText estimates the token count of a text fragment.
// Uses the approximation of ~4 characters per token.
func (c *Counter) CountText(text string) int {
	return (len(text) + 3) / 4
}

// CountMessage estimates the token count of a full message including
// per-message framing overhead.
func (c *Counter) CountMessage(msg *model.Message) int {
	return c.CountText(msg.Content) + perMessageOverhead
}

// CountMessages sums the estimated token counts of a message sequence.
func (c *Counter) CountMessages(msgs []*model.Message) int {
	total := 0
	for _, msg := range msgs {
		total += c.CountMessage(msg)
	}
	return total
}
