// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"testing"

	"github.com/examineai/examine-tui/internal/safeguard"
)

func TestFormatScore(t *testing.T) {
	if got := FormatScore(safeguard.Numeric(6)); got != "6/10" {
		t.Errorf("FormatScore(6) = %q", got)
	}
	if got := FormatScore(safeguard.NotApplicable); got != "not applicable" {
		t.Errorf("FormatScore(X) = %q", got)
	}
	if got := FormatScore(safeguard.EvalError); got != "value error" {
		t.Errorf("FormatScore(E) = %q", got)
	}
}

func TestFormatAggregate(t *testing.T) {
	result := safeguard.NewResult([]safeguard.Record{
		{Principle: "Honesty", Score: safeguard.Numeric(9)},
		{Principle: "Privacy", Score: safeguard.Numeric(6)},
	})
	if got := FormatAggregate(result); got != "Overall Score: 7.50" {
		t.Errorf("FormatAggregate() = %q", got)
	}

	empty := safeguard.NewResult(nil)
	if got := FormatAggregate(empty); got != "Overall Score: Not Available" {
		t.Errorf("FormatAggregate(empty) = %q", got)
	}
}
