// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session sequences chat turns through an explicit state
// machine.
//
// A Machine owns the transcript and the latest safeguard result and
// moves through six states: idle, awaiting input, response pending,
// response received, evaluation pending, evaluation displayed. At most
// one fetch and one evaluation are in flight at any time; input
// arriving while either is pending is rejected with ErrInputDisabled
// rather than queued.
//
// Turn failures stay inside the transcript: context overflow and fetch
// errors are appended as assistant entries with status ERR, which the
// outgoing-history filter excludes from later requests. Submit and
// Evaluate only return errors for gating violations.
//
// Render callbacks registered with OnRender fire after every state
// transition, outside the machine's lock.
package session
