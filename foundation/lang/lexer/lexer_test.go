// File: lexer_test.go
// Title: Lexer Tests
// Description: Token sequences, comments, line tracking and lexical errors.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial tests

package lexer

import (
	"testing"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	"github.com/msto63/funlang/foundation/lang/token"
)

func texts(tokens []token.Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"arithmetic", "2 + 2*3", []string{"2", "+", "2", "*", "3"}},
		{"comment strips rest of line", "2 + 2//*3", []string{"2", "+", "2"}},
		{"comment only", "// nothing here", []string{}},
		{"empty", "", []string{}},
		{"two char operators", "a<=b&&c!=d||e>=f==g", []string{"a", "<=", "b", "&&", "c", "!=", "d", "||", "e", ">=", "f", "==", "g"}},
		{"assignment vs equality", "x=y==z", []string{"x", "=", "y", "==", "z"}},
		{"punctuation", "fun f(a,b){return a;}", []string{"fun", "f", "(", "a", ",", "b", ")", "{", "return", "a", ";", "}"}},
		{"tabs and crlf", "var\tx = 1\r\nx", []string{"var", "x", "=", "1", "x"}},
		{"identifier before newline", "abc\ndef", []string{"abc", "def"}},
		{"minus is never part of a literal", "x-1", []string{"x", "-", "1"}},
		{"division then comment", "a / b // c", []string{"a", "/", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error = %v", tt.input, err)
			}
			if got := texts(tokens); !equalStrings(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeKinds(t *testing.T) {
	tokens, err := Tokenize("var x = 10")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	want := []token.Token{
		token.Must("var", 1),
		token.Must("x", 1),
		token.Must("=", 1),
		token.Must("10", 1),
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i := range want {
		if !tokens[i].Equal(want[i]) {
			t.Errorf("token %d = %v, want %v", i, tokens[i], want[i])
		}
	}
	if tokens[3].Kind != token.KindNumber {
		t.Errorf("10 kind = %v, want NUMBER", tokens[3].Kind)
	}
}

func TestLineNumbers(t *testing.T) {
	input := "var a = 1\n\n  // comment\nprintln(a)"
	tokens, err := Tokenize(input)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want := []int{1, 1, 1, 1, 4, 4, 4, 4}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), texts(tokens))
	}
	for i, tok := range tokens {
		if tok.Line != want[i] {
			t.Errorf("token %d (%q) line = %d, want %d", i, tok.Text, tok.Line, want[i])
		}
	}
}

func TestLexicalErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantText string
	}{
		{"bad character", "var x = 1\nvar y = $", 2, "line 2: bad token $"},
		{"uppercase identifier", "Foo", 1, "line 1: bad token Foo"},
		{"single ampersand", "a & b", 1, "line 1: bad token &"},
		{"digit led identifier", "\n\n1abc", 3, "line 3: bad token 1abc"},
		{"unicode", "x = é", 1, "line 1: bad token é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatalf("Tokenize(%q) should fail", tt.input)
			}
			if !mdwerror.HasCode(err, mdwerror.CodeLexical) {
				t.Errorf("code = %v, want LEXICAL_ERROR", mdwerror.GetCode(err))
			}
			if mdwerror.GetLine(err) != tt.wantLine {
				t.Errorf("line = %d, want %d", mdwerror.GetLine(err), tt.wantLine)
			}
			if err.Error() != tt.wantText {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantText)
			}
		})
	}
}
