// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package safeguard

import "fmt"

// =============================================================================
// SCORE TYPES
// =============================================================================

// ScoreKind discriminates the three per-principle outcomes.
type ScoreKind int

const (
	// ScoreNumeric is an integer rating between 0 and 10 inclusive.
	ScoreNumeric ScoreKind = iota

	// ScoreNotApplicable means the evaluator judged the principle
	// irrelevant to the response.
	ScoreNotApplicable

	// ScoreError means the evaluator's output could not be parsed. The
	// raw text is kept in the record's Assessment for inspection.
	ScoreError
)

// Wire markers used when persisting scores.
const (
	markNotApplicable = "X"
	markError         = "E"
)

// Score is a tagged score value. Value is meaningful only when Kind is
// ScoreNumeric.
type Score struct {
	Kind  ScoreKind
	Value int
}

// Numeric constructs an in-range numeric score.
func Numeric(v int) Score {
	return Score{Kind: ScoreNumeric, Value: v}
}

// NotApplicable is the not-applicable sentinel.
var NotApplicable = Score{Kind: ScoreNotApplicable}

// EvalError is the parse-failure sentinel.
var EvalError = Score{Kind: ScoreError}

// String renders the persisted wire form: the integer, "X", or "E".
func (s Score) String() string {
	switch s.Kind {
	case ScoreNumeric:
		return fmt.Sprintf("%d", s.Value)
	case ScoreNotApplicable:
		return markNotApplicable
	default:
		return markError
	}
}

// ParseScoreMark converts a persisted wire form back into a Score.
func ParseScoreMark(s string) (Score, error) {
	switch s {
	case markNotApplicable:
		return NotApplicable, nil
	case markError:
		return EvalError, nil
	}
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil || v < 0 || v > 10 {
		return Score{}, fmt.Errorf("invalid score mark %q", s)
	}
	return Numeric(v), nil
}

// =============================================================================
// RESULT TYPES
// =============================================================================

// Record is one principle's evaluation.
type Record struct {
	Principle  string
	Assessment string
	Score      Score
}

// Result is a full evaluation run, keyed by principle description. A new
// run fully replaces the previous one; results are never merged.
type Result struct {
	Records map[string]Record

	// Aggregate is the mean of the numeric scores, nil when none exist.
	Aggregate *float64

	CountNumeric       int
	CountNotApplicable int
	CountEvalError     int
}

// NewResult assembles a Result from records, deriving the aggregate and
// the per-kind counts.
func NewResult(records []Record) *Result {
	res := &Result{Records: make(map[string]Record, len(records))}

	sum := 0
	for _, rec := range records {
		res.Records[rec.Principle] = rec
		switch rec.Score.Kind {
		case ScoreNumeric:
			res.CountNumeric++
			sum += rec.Score.Value
		case ScoreNotApplicable:
			res.CountNotApplicable++
		case ScoreError:
			res.CountEvalError++
		}
	}

	if res.CountNumeric > 0 {
		avg := float64(sum) / float64(res.CountNumeric)
		res.Aggregate = &avg
	}
	return res
}

// Len returns the number of evaluated principles.
func (r *Result) Len() int {
	return len(r.Records)
}
