// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the application:
// chat messages, the append-only transcript, and the catalog of supported
// completion models with their context windows.
package model
