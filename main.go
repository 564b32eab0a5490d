// examine - LLM chat with a safeguard evaluation pass.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	"github.com/examineai/examine-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version = "0.1.0"
)

func main() {
	if err := cli.Execute(Version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
