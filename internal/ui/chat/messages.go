// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/examineai/examine-tui/internal/model"
	"github.com/examineai/examine-tui/internal/safeguard"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ReplyMsg is delivered when a submitted turn completes. The reply is
// already appended to the transcript; failures arrive as messages with
// status ERR rather than as a Go error.
type ReplyMsg struct {
	Reply *model.Message
}

// EvalMsg is delivered when a safeguard evaluation completes.
type EvalMsg struct {
	Result *safeguard.Result
}

// SessionErrMsg reports a rejected operation, such as submitting while a
// fetch is already in flight.
type SessionErrMsg struct {
	Err error
}
