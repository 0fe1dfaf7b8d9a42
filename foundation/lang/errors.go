package lang

import (
	mdwerror "github.com/msto63/funlang/foundation/core/error"
)

// IsLexical reports whether err is an unrecognized token
func IsLexical(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeLexical) }

// IsSyntax reports whether err is a grammar mismatch
func IsSyntax(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeSyntax) }

// IsName reports whether err is an unresolved variable or function
func IsName(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeName) }

// IsArity reports whether err is a call with the wrong argument count
func IsArity(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeArity) }

// IsInternal reports whether err is an evaluator contract violation
func IsInternal(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeInternal) }

// IsArithmetic reports whether err is a division by zero
func IsArithmetic(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeArithmetic) }

// IsResourceExhausted reports whether err is a call depth overflow
func IsResourceExhausted(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeResource) }

// IsCancelled reports whether the run was stopped by its context
func IsCancelled(err error) bool { return mdwerror.HasCode(err, mdwerror.CodeCancelled) }

// IsProgramError reports whether err was caused by the program rather
// than by the host
func IsProgramError(err error) bool {
	return mdwerror.GetCode(err).IsProgramError()
}

// Line returns the source line of err, or 0
func Line(err error) int { return mdwerror.GetLine(err) }
