// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists session artifacts to flat files: the
// transcript as an append-only JSONL record stream (one line per
// message, never rewritten) and the safeguard scores as a JSON document
// that each evaluation run overwrites whole.
package storage
