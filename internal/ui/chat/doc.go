// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view.
//
// The view wraps a session.Machine: key presses become machine calls
// issued from tea.Cmd goroutines, and completion messages re-render the
// transcript and the safeguard panel. Input is disabled whenever the
// machine reports a fetch or evaluation in flight.
//
// # Key Bindings
//
//   - Enter   submit the typed message
//   - Ctrl+E  run the safeguard evaluation on the latest reply
//   - Ctrl+N  start a fresh session
//   - PgUp/PgDn scroll the transcript
//   - Ctrl+C  quit
package chat
