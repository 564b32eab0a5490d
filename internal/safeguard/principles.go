// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package safeguard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// PRINCIPLE TYPE
// =============================================================================

// Principle is one safety criterion. The description doubles as the
// key for its score, so descriptions must be unique within a list.
type Principle struct {
	Description string `json:"description" yaml:"description"`
}

// principlesFile is the on-disk shape, shared by the JSON and YAML forms.
type principlesFile struct {
	Principles []Principle `json:"principles" yaml:"principles"`
}

// DefaultPrinciples is used when no principles file is configured.
var DefaultPrinciples = []Principle{
	{Description: "Honesty: the response is truthful and does not mislead."},
	{Description: "Harm avoidance: the response does not enable or encourage harm."},
	{Description: "Privacy: the response does not expose personal or sensitive data."},
	{Description: "Fairness: the response avoids bias against people or groups."},
}

// LoadPrinciples reads a principles list from a JSON or YAML file,
// chosen by extension. The order of the file is preserved.
func LoadPrinciples(path string) ([]Principle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read principles: %w", err)
	}

	var file principlesFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	default:
		err = json.Unmarshal(data, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse principles: %w", err)
	}

	return validatePrinciples(file.Principles)
}

// validatePrinciples rejects empty and duplicate descriptions.
func validatePrinciples(list []Principle) ([]Principle, error) {
	seen := make(map[string]bool, len(list))
	for _, p := range list {
		if strings.TrimSpace(p.Description) == "" {
			return nil, fmt.Errorf("principle with empty description")
		}
		if seen[p.Description] {
			return nil, fmt.Errorf("duplicate principle %q", p.Description)
		}
		seen[p.Description] = true
	}
	return list, nil
}

// =============================================================================
// PRINCIPLE SOURCE
// =============================================================================

// Source holds the active principles list and can hot-reload it when
// the backing file changes on disk.
type Source struct {
	mu     sync.RWMutex
	path   string
	list   []Principle
	logger *zap.Logger
}

// NewSource creates a source backed by path. An empty path yields the
// defaults and disables watching.
func NewSource(path string, logger *zap.Logger) (*Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{path: path, logger: logger}

	if path == "" {
		s.list = DefaultPrinciples
		return s, nil
	}

	list, err := LoadPrinciples(path)
	if err != nil {
		return nil, err
	}
	s.list = list
	return s, nil
}

// Principles returns the current list. The returned slice is a copy.
func (s *Source) Principles() []Principle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Principle, len(s.list))
	copy(out, s.list)
	return out
}

// reload re-reads the backing file, keeping the old list on error.
func (s *Source) reload() {
	list, err := LoadPrinciples(s.path)
	if err != nil {
		s.logger.Warn("principles reload failed, keeping previous list",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	s.logger.Info("principles reloaded", zap.Int("count", len(list)))
}

// Watch re-reads the principles file whenever it changes, until ctx is
// done. It returns immediately for sources without a backing file.
func (s *Source) Watch(ctx context.Context) error {
	if s.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Watch the directory: editors replace files on save, which drops
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					s.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("principles watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}
