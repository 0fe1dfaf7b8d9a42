// ============================================================================
// funlang - Integer Language Toolchain
// ============================================================================
//
// Package:     repl
// Description: Transcript entries and async message types for the REPL
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package repl

import (
	"time"

	"github.com/msto63/funlang/foundation/lang"
)

// EntryKind classifies a transcript entry
type EntryKind int

const (
	EntryInput EntryKind = iota
	EntryOutput
	EntryError
	EntrySystem
)

// Entry is one block of the transcript
type Entry struct {
	Kind     EntryKind
	Text     string
	Duration time.Duration // set on output and error entries
}

// evalResultMsg is sent when an evaluation finished
type evalResultMsg struct {
	source string
	result *lang.Result
	err    error
}
