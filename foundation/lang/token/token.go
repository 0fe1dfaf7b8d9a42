// File: token.go
// Title: Token Classifier
// Description: Token kinds, the fixed keyword, operator and punctuation
//              tables, and classification of raw text into tokens.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial classifier

package token

import (
	"fmt"
	"regexp"
	"strconv"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
)

// Kind is the lexical category of a token
type Kind int

const (
	KindKeyword Kind = iota + 1
	KindNumber
	KindIdentifier
	KindOperator
	KindPunctuation
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "KEYWORD"
	case KindNumber:
		return "NUMBER"
	case KindIdentifier:
		return "IDENTIFIER"
	case KindOperator:
		return "OPERATOR"
	case KindPunctuation:
		return "PUNCTUATION"
	default:
		return "UNKNOWN"
	}
}

// Keywords
const (
	Fun    = "fun"
	Var    = "var"
	While  = "while"
	If     = "if"
	Else   = "else"
	Return = "return"
)

// Assign is the assignment operator. It is an operator token but never a
// binary operator in expressions.
const Assign = "="

// MaxPrecedence is the loosest binary precedence level
const MaxPrecedence = 6

var keywords = map[string]bool{
	Fun: true, Var: true, While: true, If: true, Else: true, Return: true,
}

// precedence maps every operator to its level, 1 binding tightest.
// Assign sits outside the binary levels.
var precedence = map[string]int{
	"*": 1, "/": 1, "%": 1,
	"+": 2, "-": 2,
	"<": 3, ">": 3, "<=": 3, ">=": 3,
	"==": 4, "!=": 4,
	"&&":   5,
	"||":   6,
	Assign: 9,
}

var punctuation = map[string]bool{
	"(": true, ")": true, ";": true, ",": true, "{": true, "}": true,
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Token is a classified piece of source text. Line is metadata only and
// does not take part in Equal.
type Token struct {
	Text string
	Kind Kind
	Line int
}

// New classifies text and returns the token. Classification order:
// keyword, operator, punctuation, number, identifier. Text matching none of
// them fails with a LEXICAL_ERROR carrying line.
func New(text string, line int) (Token, error) {
	kind, ok := Classify(text)
	if !ok {
		return Token{}, mdwerror.New("bad token "+text).
			WithCode(mdwerror.CodeLexical).
			WithLine(line).
			WithOperation("token.New").
			WithDetail("text", text)
	}
	return Token{Text: text, Kind: kind, Line: line}, nil
}

// Must is like New but panics on unclassifiable text. Intended for
// constructing expected tokens in tests and tables.
func Must(text string, line int) Token {
	tok, err := New(text, line)
	if err != nil {
		panic(err)
	}
	return tok
}

// Classify returns the kind of text and whether text is a valid token
func Classify(text string) (Kind, bool) {
	switch {
	case keywords[text]:
		return KindKeyword, true
	case isOperator(text):
		return KindOperator, true
	case punctuation[text]:
		return KindPunctuation, true
	case isNumber(text):
		return KindNumber, true
	case identifierPattern.MatchString(text):
		return KindIdentifier, true
	default:
		return 0, false
	}
}

// Equal reports whether both tokens have the same text and kind
func (t Token) Equal(other Token) bool {
	return t.Text == other.Text && t.Kind == other.Kind
}

// Is reports whether the token is exactly text (with its natural kind)
func (t Token) Is(text string) bool {
	if t.Text != text {
		return false
	}
	kind, _ := Classify(text)
	return t.Kind == kind
}

// Value returns the integer value of a number token
func (t Token) Value() (int64, error) {
	if t.Kind != KindNumber {
		return 0, mdwerror.Newf("%q is not a number", t.Text).
			WithCode(mdwerror.CodeInternal).
			WithLine(t.Line)
	}
	return strconv.ParseInt(t.Text, 10, 64)
}

// String returns a compact description used in diagnostics
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Precedence returns the binary precedence level of op (1..MaxPrecedence),
// or 0 if op is not a binary operator.
func Precedence(op string) int {
	level, ok := precedence[op]
	if !ok || level > MaxPrecedence {
		return 0
	}
	return level
}

// IsOperatorChar reports whether the single character s is an operator or
// punctuation token on its own.
func IsOperatorChar(s string) bool {
	return isOperator(s) || punctuation[s]
}

// IsTwoCharOperator reports whether s is one of the two character operators
func IsTwoCharOperator(s string) bool {
	return len(s) == 2 && isOperator(s)
}

func isOperator(text string) bool {
	_, ok := precedence[text]
	return ok
}

func isNumber(text string) bool {
	_, err := strconv.ParseInt(text, 10, 64)
	return err == nil
}
