// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package budget

import (
	"errors"
	"testing"

	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/tokens"
)

// fixedCounter maps message content to a preset token count so tests can
// script exact totals.
type fixedCounter map[string]int

func (f fixedCounter) CountMessage(msg *model.Message) int {
	return f[msg.Content]
}

func msgSeq(contents ...string) []*model.Message {
	msgs := make([]*model.Message, len(contents))
	for i, c := range contents {
		if i%2 == 0 {
			msgs[i] = model.NewUserMessage(c)
		} else {
			msgs[i] = model.NewAssistantMessage(c)
		}
	}
	return msgs
}

func TestTrimUnderBudgetUnchanged(t *testing.T) {
	counter := fixedCounter{"a": 200, "b": 150, "c": 150}
	mgr := NewManager(counter, 100)

	msgs := msgSeq("a", "b", "c") // 500 tokens total
	res, err := mgr.Trim(msgs, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Truncated {
		t.Error("expected no truncation")
	}
	if len(res.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(res.Messages))
	}
	if res.TokensKept != 500 {
		t.Errorf("TokensKept = %d, want 500", res.TokensKept)
	}
}

func TestTrimDropsOldestPrefix(t *testing.T) {
	counter := fixedCounter{"a": 250, "b": 400, "c": 400}
	mgr := NewManager(counter, 100)

	msgs := msgSeq("a", "b", "c") // total 1050, excess 150
	res, err := mgr.Trim(msgs, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.Truncated {
		t.Error("expected truncation")
	}
	if res.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Dropped)
	}
	if len(res.Messages) != 2 || res.Messages[0].Content != "b" || res.Messages[1].Content != "c" {
		t.Errorf("expected suffix [b c], got %d messages", len(res.Messages))
	}
	if res.TokensKept+mgr.Headroom() >= 1000 {
		t.Errorf("kept %d + headroom %d must stay under the limit", res.TokensKept, mgr.Headroom())
	}
}

func TestTrimPreservesOrderAndContiguity(t *testing.T) {
	counter := fixedCounter{"a": 300, "b": 300, "c": 300, "d": 300, "e": 300}
	mgr := NewManager(counter, 100)

	msgs := msgSeq("a", "b", "c", "d", "e") // total 1500
	res, err := mgr.Trim(msgs, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 1500+100 >= 1000 drops a, b, c; [d e] fits (600+100 < 1000).
	want := []string{"d", "e"}
	if len(res.Messages) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(res.Messages))
	}
	for i, w := range want {
		if res.Messages[i].Content != w {
			t.Errorf("message %d = %q, want %q", i, res.Messages[i].Content, w)
		}
	}
}

func TestTrimContextOverflow(t *testing.T) {
	counter := fixedCounter{"huge": 5000}
	mgr := NewManager(counter, 100)

	msgs := msgSeq("huge")
	_, err := mgr.Trim(msgs, 1000)
	if !errors.Is(err, ErrContextOverflow) {
		t.Fatalf("expected ErrContextOverflow, got %v", err)
	}
}

func TestTrimFiltersUnsendableMessages(t *testing.T) {
	counter := fixedCounter{"ok": 100, "failed": 100}
	mgr := NewManager(counter, 100)

	errMsg := model.NewErrorMessage("failed")
	msgs := []*model.Message{
		model.NewUserMessage("ok"),
		errMsg,
	}

	res, err := mgr.Trim(msgs, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Messages) != 1 || res.Messages[0].Content != "ok" {
		t.Errorf("ERR message should be excluded from the request, got %d messages", len(res.Messages))
	}
}

func TestTrimKeepsWarnMessages(t *testing.T) {
	counter := fixedCounter{"partial": 100}
	mgr := NewManager(counter, 100)

	warn := model.NewAssistantMessage("partial")
	warn.Status = model.StatusWarn

	res, err := mgr.Trim([]*model.Message{warn}, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Messages) != 1 {
		t.Error("WARN messages must remain sendable")
	}
}

func TestTrimDefaultHeadroom(t *testing.T) {
	counter := fixedCounter{}
	mgr := NewManager(counter, 0)
	if mgr.Headroom() != DefaultHeadroom {
		t.Errorf("Headroom = %d, want %d", mgr.Headroom(), DefaultHeadroom)
	}
}

func TestTrimWithRealCounter(t *testing.T) {
	counter, err := tokens.NewCounter("cl100k_base")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mgr := NewManager(counter, 100)

	msgs := msgSeq("hello there", "general reply")
	res, err := mgr.Trim(msgs, 4096)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Truncated {
		t.Error("small conversation should fit a 4096 window")
	}
	if res.TokensKept != counter.CountMessages(msgs) {
		t.Errorf("TokensKept = %d, want %d", res.TokensKept, counter.CountMessages(msgs))
	}
}
