// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// State is the session's single source of truth for turn sequencing.
// Exactly one value holds at a time; every UI affordance derives from
// it instead of from independent booleans.
type State int

const (
	// StateIdle is the initial state before any input.
	StateIdle State = iota

	// StateAwaitingUserInput means the session is ready for input.
	StateAwaitingUserInput

	// StateResponsePending means a fetch is in flight. Input is
	// disabled.
	StateResponsePending

	// StateResponseReceived means the latest turn has an assistant
	// entry (success or inline failure). Input and Evaluate are
	// enabled.
	StateResponseReceived

	// StateEvaluationPending means a safeguard run is in flight. Input
	// and Evaluate are disabled.
	StateEvaluationPending

	// StateEvaluationDisplayed means a safeguard result is available
	// for the latest response. Input is enabled.
	StateEvaluationDisplayed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingUserInput:
		return "awaiting_user_input"
	case StateResponsePending:
		return "response_pending"
	case StateResponseReceived:
		return "response_received"
	case StateEvaluationPending:
		return "evaluation_pending"
	case StateEvaluationDisplayed:
		return "evaluation_displayed"
	default:
		return "unknown"
	}
}

// InputEnabled reports whether user input is accepted in this state.
func (s State) InputEnabled() bool {
	switch s {
	case StateResponsePending, StateEvaluationPending:
		return false
	default:
		return true
	}
}

// EvaluateEnabled reports whether the evaluate control is active in
// this state.
func (s State) EvaluateEnabled() bool {
	return s == StateResponseReceived
}
