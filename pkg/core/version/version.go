// ============================================================================
// funlang - Integer Language Toolchain
// ============================================================================
//
// Package:     version
// Description: Central version management for the toolchain and its services
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package version

import "fmt"

// Version constants for funlang components
const (
	// Toolchain version
	Platform = "0.1.0"

	// Component versions
	Language    = "0.1.0"
	Interpreter = "0.1.0"
	History     = "0.1.0"
)

// Build metadata, set through -ldflags "-X ...version.Commit=..."
var (
	Commit    = "unknown"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "language", "lang":
		return Language
	case "interpreter":
		return Interpreter
	case "history":
		return History
	default:
		return Platform
	}
}

// String returns a one-line description of the build
func String() string {
	return fmt.Sprintf("funlang %s (language %s, commit %s, built %s)", Platform, Language, Commit, BuildDate)
}
