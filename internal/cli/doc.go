// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli defines the examine command tree.
//
// The root command launches the chat interface: the full-screen TUI on
// a terminal, or a line-oriented REPL with --plain or piped input.
// Subcommands manage archived sessions and the safeguard principles
// file.
//
//	examine                 start chatting
//	examine sessions list   list archived sessions
//	examine sessions show   print one archived session
//	examine sessions rm     delete an archived session
//	examine principles      print the active principles
//	examine principles check  validate a principles file
package cli
