// Package error provides the structured error type shared by every funlang package.
//
// Package: error
// Title: funlang Error Handling
// Description: Structured errors carrying a code, a severity, the failing
//              operation, free-form details and, for interpreter failures,
//              the source line at which the problem was detected.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-18
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-18 v0.2.0: Source line tracking and interpreter error codes
//
// Usage:
//
//	err := mdwerror.New("bad token $").
//		WithCode(mdwerror.CodeLexical).
//		WithLine(3)
//
//	if mdwerror.HasCode(err, mdwerror.CodeLexical) {
//		fmt.Println(mdwerror.GetLine(err)) // 3
//	}
package error
