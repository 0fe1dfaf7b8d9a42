// File: lexer.go
// Title: Lexical Analyzer
// Description: Splits program text into classified tokens line by line,
//              dropping whitespace and // comments and attaching the 1-based
//              line number of each token.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial lexer implementation

package lexer

import (
	"strings"

	"github.com/msto63/funlang/foundation/lang/token"
)

// Lexer scans one source text. A Lexer is single use.
type Lexer struct {
	input  string
	tokens []token.Token
	buffer strings.Builder
	line   int
}

// New creates a lexer for input
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize is a convenience wrapper around New(input).Tokenize()
func Tokenize(input string) ([]token.Token, error) {
	return New(input).Tokenize()
}

// Tokenize scans the whole input. The first unclassifiable piece of text
// aborts scanning with a LEXICAL_ERROR for its line.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	for i, text := range strings.Split(l.input, "\n") {
		l.line = i + 1
		if err := l.scanLine([]rune(text)); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

func (l *Lexer) scanLine(chars []rune) error {
	for i := 0; i < len(chars); i++ {
		ch := chars[i]

		var pair string
		if i+1 < len(chars) {
			pair = string(chars[i : i+2])
		}

		switch {
		case pair == "//":
			return l.flush()

		case ch == ' ' || ch == '\t' || ch == '\r':
			if err := l.flush(); err != nil {
				return err
			}

		case token.IsTwoCharOperator(pair):
			if err := l.flush(); err != nil {
				return err
			}
			if err := l.emit(pair); err != nil {
				return err
			}
			i++ // second character of the operator

		case token.IsOperatorChar(string(ch)):
			if err := l.flush(); err != nil {
				return err
			}
			if err := l.emit(string(ch)); err != nil {
				return err
			}

		default:
			l.buffer.WriteRune(ch)
		}
	}
	return l.flush()
}

// flush turns the accumulated buffer into a token, if any
func (l *Lexer) flush() error {
	if l.buffer.Len() == 0 {
		return nil
	}
	text := l.buffer.String()
	l.buffer.Reset()
	return l.emit(text)
}

func (l *Lexer) emit(text string) error {
	tok, err := token.New(text, l.line)
	if err != nil {
		return err
	}
	l.tokens = append(l.tokens, tok)
	return nil
}
