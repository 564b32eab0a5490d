// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"sort"
)

// =============================================================================
// MODEL PROFILE TYPE
// =============================================================================

// Profile describes a completion model the client knows how to budget
// for: its context window and the tokenizer encoding used to count
// against it.
type Profile struct {
	// ID is the model identifier used in API calls.
	ID string `json:"id"`

	// Name is the human-readable display name.
	Name string `json:"name"`

	// ContextWindow is the total token limit shared by the prompt and
	// the completion.
	ContextWindow int `json:"context_window"`

	// Encoding names the tokenizer used for budget accounting.
	Encoding string `json:"encoding"`
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// Profiles is the catalog of supported models keyed by API identifier.
var Profiles = map[string]Profile{
	"gpt-3.5-turbo": {
		ID:            "gpt-3.5-turbo",
		Name:          "GPT-3.5 Turbo",
		ContextWindow: 4096,
		Encoding:      "cl100k_base",
	},
	"gpt-3.5-turbo-16k": {
		ID:            "gpt-3.5-turbo-16k",
		Name:          "GPT-3.5 Turbo 16K",
		ContextWindow: 16384,
		Encoding:      "cl100k_base",
	},
	"gpt-4": {
		ID:            "gpt-4",
		Name:          "GPT-4",
		ContextWindow: 8192,
		Encoding:      "cl100k_base",
	},
	"gpt-4-32k": {
		ID:            "gpt-4-32k",
		Name:          "GPT-4 32K",
		ContextWindow: 32768,
		Encoding:      "cl100k_base",
	},
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4"

// LookupProfile returns the profile for a model ID.
func LookupProfile(id string) (Profile, error) {
	p, ok := Profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("unknown model %q", id)
	}
	return p, nil
}

// ModelIDs returns the catalog's model identifiers in sorted order.
func ModelIDs() []string {
	ids := make([]string, 0, len(Profiles))
	for id := range Profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
