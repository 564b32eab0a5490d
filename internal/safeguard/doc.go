// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package safeguard scores an assistant response against a configurable
// list of safety principles. Each principle is evaluated independently
// by the completion endpoint; the heterogeneous per-principle outcomes
// (numeric score, not-applicable, parse error) are aggregated into a
// single mean without letting any individual failure poison the run.
package safeguard
