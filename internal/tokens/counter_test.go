// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tokens

import (
	"testing"

	"github.com/examineai/examine-tui/internal/model"
)

func TestNewCounterUnknownEncoding(t *testing.T) {
	if _, err := NewCounter("p50k_base"); err == nil {
		t.Error("expected error for unsupported encoding")
	}

	c, err := NewCounter("cl100k_base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Encoding() != "cl100k_base" {
		t.Errorf("Encoding() = %q", c.Encoding())
	}
}

func TestForModel(t *testing.T) {
	c, err := ForModel("gpt-4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Encoding() != "cl100k_base" {
		t.Errorf("expected cl100k_base, got %q", c.Encoding())
	}

	if _, err := ForModel("no-such-model"); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestCountTextDeterministic(t *testing.T) {
	c, _ := NewCounter("cl100k_base")

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"the quick brown fox", 5},
	}

	for _, tt := range tests {
		if got := c.CountText(tt.text); got != tt.want {
			t.Errorf("CountText(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}

	// Same input, same answer.
	for i := 0; i < 3; i++ {
		if c.CountText("stable input") != c.CountText("stable input") {
			t.Fatal("count not deterministic")
		}
	}
}

func TestCountMessageIncludesOverhead(t *testing.T) {
	c, _ := NewCounter("cl100k_base")
	msg := model.NewUserMessage("abcd")

	want := 1 + perMessageOverhead
	if got := c.CountMessage(msg); got != want {
		t.Errorf("CountMessage = %d, want %d", got, want)
	}
}

func TestCountMessagesSums(t *testing.T) {
	c, _ := NewCounter("cl100k_base")
	msgs := []*model.Message{
		model.NewUserMessage("abcd"),
		model.NewSystemMessage("abcdefgh"),
	}

	want := c.CountMessage(msgs[0]) + c.CountMessage(msgs[1])
	if got := c.CountMessages(msgs); got != want {
		t.Errorf("CountMessages = %d, want %d", got, want)
	}
	if c.CountMessages(nil) != 0 {
		t.Error("empty sequence should count zero")
	}
}
