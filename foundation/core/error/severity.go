// File: severity.go
// Title: Error Severity Levels
// Description: Severity levels used to map errors onto log levels.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with severity levels
// - 2026-10-18 v0.2.0: Severity mapping for interpreter codes

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers mistakes in user input such as a faulty program
	SeverityLow Severity = iota

	// SeverityMedium is the default for errors without a code
	SeverityMedium

	// SeverityHigh covers host-side failures like storage or exhausted resources
	SeverityHigh

	// SeverityCritical means the process cannot continue
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// GetSeverityFromCode determines the severity level for an error code
func GetSeverityFromCode(code Code) Severity {
	switch code {
	case CodeInternal:
		return SeverityCritical
	case CodeResource, CodeDatabaseError, CodeServiceUnavailable, CodeConfigError, CodeInvalidConfig:
		return SeverityHigh
	case CodeLexical, CodeSyntax, CodeName, CodeArity, CodeArithmetic,
		CodeInvalidInput, CodeNotFound, CodeCancelled:
		return SeverityLow
	default:
		return SeverityMedium
	}
}
