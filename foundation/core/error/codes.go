// File: codes.go
// Title: Error Code Definitions
// Description: Standardized error codes used for classification of interpreter
//              failures and infrastructure errors alike.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with core error codes
// - 2026-10-18 v0.2.0: Interpreter codes, removed business and auth codes

package error

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCancelled    Code = "CANCELLED"

	// Interpreter
	CodeLexical    Code = "LEXICAL_ERROR"
	CodeSyntax     Code = "SYNTAX_ERROR"
	CodeName       Code = "NAME_ERROR"
	CodeArity      Code = "ARITY_ERROR"
	CodeArithmetic Code = "ARITHMETIC_ERROR"
	CodeResource   Code = "RESOURCE_EXHAUSTED"

	// Storage and transport
	CodeDatabaseError      Code = "DATABASE_ERROR"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError       Code = "NETWORK_ERROR"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeNotFound, CodeInvalidInput, CodeTimeout, CodeCancelled,
		CodeLexical, CodeSyntax, CodeName, CodeArity, CodeArithmetic, CodeResource,
		CodeDatabaseError, CodeServiceUnavailable, CodeNetworkError,
		CodeConfigError, CodeInvalidConfig:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLexical, CodeSyntax:
		return "compile"
	case CodeName, CodeArity, CodeArithmetic, CodeResource, CodeCancelled:
		return "runtime"
	case CodeDatabaseError:
		return "database"
	case CodeServiceUnavailable, CodeNetworkError, CodeTimeout:
		return "service"
	case CodeConfigError, CodeInvalidConfig:
		return "configuration"
	default:
		return "generic"
	}
}

// IsProgramError reports whether the code describes a fault in the user's
// program rather than in the host.
func (c Code) IsProgramError() bool {
	switch c.Category() {
	case "compile", "runtime":
		return true
	}
	return false
}
