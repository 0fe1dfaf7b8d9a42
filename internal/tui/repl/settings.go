// ============================================================================
// funlang - Integer Language Toolchain
// ============================================================================
//
// Package:     repl
// Description: Input history persistence for the REPL
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package repl

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MaxInputHistory bounds the persisted input history
const MaxInputHistory = 100

// Settings holds persistent REPL settings
type Settings struct {
	InputHistory []string `json:"input_history,omitempty"`
}

// LoadSettings loads settings from path. A missing or unreadable file
// yields empty settings.
func LoadSettings(path string) *Settings {
	if path == "" {
		return &Settings{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return &Settings{}
	}
	return &settings
}

// SaveSettings saves settings to path. An empty path is a no-op.
func SaveSettings(path string, settings *Settings) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveInputHistory saves the newest MaxInputHistory entries
func SaveInputHistory(path string, history []string) error {
	if len(history) > MaxInputHistory {
		history = history[len(history)-MaxInputHistory:]
	}
	settings := LoadSettings(path)
	settings.InputHistory = history
	return SaveSettings(path, settings)
}

// LoadInputHistory loads the input history
func LoadInputHistory(path string) []string {
	history := LoadSettings(path).InputHistory
	if history == nil {
		return []string{}
	}
	return history
}
