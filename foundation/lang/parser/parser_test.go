// File: parser_test.go
// Title: Parser Tests
// Description: Precedence, associativity, statement forms and syntax
//              error reporting.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial tests

package parser

import (
	"strings"
	"testing"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/foundation/lang/lexer"
	"github.com/msto63/funlang/foundation/lang/token"
)

const fibProgram = `fun fib(n) {
    if (n <= 1) {
        return 1
    }
    return fib(n - 1) + fib(n - 2)
}

var i = 1
while (i <= 5) {
    println(i, fib(i))
    i = i + 1
}`

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource(%q) error = %v", src, err)
	}
	return file
}

func mustTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error = %v", src, err)
	}
	return tokens
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plus binds tighter than equality", "2 + 2 == 4", "{((2 + 2) == 4)}"},
		{"times binds tighter than plus", "2 + 2 * 3", "{(2 + (2 * 3))}"},
		{"times on the left", "2 * 3 + 4", "{((2 * 3) + 4)}"},
		{"comparison below equality", "a < b == c > d", "{((a < b) == (c > d))}"},
		{"and binds tighter than or", "1 || 0 && x", "{(1 || (0 && x))}"},
		{"parentheses", "(2 + 2) * 3", "{((2 + 2) * 3)}"},
		{"call arguments", "f(1 + 2, g(), x)", "{f((1 + 2), g(), x)}"},
		{"modulo", "n % 2 == 0", "{((n % 2) == 0)}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.input).String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

// Same-level chains group to the right. This is the language's defined
// grouping and these cases pin it.
func TestSameLevelChainsGroupRight(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a - b - c", "{(a - (b - c))}"},
		{"8 / 4 / 2", "{(8 / (4 / 2))}"},
		{"1 + 2 - 3 + 4", "{(1 + (2 - (3 + 4)))}"},
		{"a || b || c", "{(a || (b || c))}"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mustParse(t, tt.input).String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"var without init", "var x", "{var x}"},
		{"var with init", "var x = 1 + 2", "{var x = (1 + 2)}"},
		{"assignment", "x = x * 2", "{x = (x * 2)}"},
		{"return", "return 0", "{return 0}"},
		{"bare call", "println(1, 2)", "{println(1, 2)}"},
		{"while", "while (i < 3) { i = i + 1 }", "{while ((i < 3)) {i = (i + 1)}}"},
		{"if else", "if (x) { y = 1 } else { y = 2 }", "{if (x) {y = 1} else {y = 2}}"},
		{"empty bodies", "fun f() {} if (1) {} else {}", "{fun f() {}; if (1) {} else {}}"},
		{"function params", "fun add(a, b) { return a + b }", "{fun add(a, b) {return (a + b)}}"},
		{"semicolons", "var a=1; fun set(){ a = 2 }; set(); println(a)", "{var a = 1; fun set() {a = 2}; set(); println(a)}"},
		{"empty program", "", "{}"},
		{"comments only", "// nothing\n// here", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.input).String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestStatementNodes(t *testing.T) {
	file := mustParse(t, fibProgram)

	stmts := file.Body.Statements
	if len(stmts) != 3 {
		t.Fatalf("got %d top-level statements, want 3", len(stmts))
	}

	fn, ok := stmts[0].(*ast.FunctionDecl)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.FunctionDecl", stmts[0])
	}
	if fn.Name.Name != "fib" || len(fn.Params) != 1 || fn.Params[0].Name != "n" {
		t.Errorf("function header = %s(%v)", fn.Name.Name, fn.Params)
	}
	if fn.Pos.Line != 1 {
		t.Errorf("function line = %d, want 1", fn.Pos.Line)
	}

	ret, ok := fn.Body.Statements[1].(*ast.Return)
	if !ok {
		t.Fatalf("fib body statement 1 is %T, want *ast.Return", fn.Body.Statements[1])
	}
	if ret.Pos.Line != 5 {
		t.Errorf("return line = %d, want 5", ret.Pos.Line)
	}

	loop, ok := stmts[2].(*ast.While)
	if !ok {
		t.Fatalf("statement 2 is %T, want *ast.While", stmts[2])
	}
	if loop.Pos.Line != 9 {
		t.Errorf("while line = %d, want 9", loop.Pos.Line)
	}
	if _, ok := loop.Body.Statements[0].(*ast.FunctionCall); !ok {
		t.Errorf("loop statement 0 is %T, want *ast.FunctionCall", loop.Body.Statements[0])
	}
	if _, ok := loop.Body.Statements[1].(*ast.Assignment); !ok {
		t.Errorf("loop statement 1 is %T, want *ast.Assignment", loop.Body.Statements[1])
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
		wantMsg  string
	}{
		{"missing var name", "var = 3", 1, "line 1: expected identifier but found ="},
		{"unclosed block", "if (x) {\n  y = 1\n", 2, "line 2: expected } but reached end of input"},
		{"missing comma", "fun f(a b) {}", 1, "line 1: expected ) but found b"},
		{"stray brace", "x = 1\n}", 2, "line 2: unexpected token }"},
		{"dangling operator", "1 +", 1, "line 1: unexpected end of input, expected expression"},
		{"unclosed paren", "(1 + 2", 1, "line 1: expected ) but reached end of input"},
		{"keyword as value", "x = while", 1, "line 1: unexpected token while"},
		{"else without if", "else { }", 1, "line 1: unexpected token else"},
		{"missing condition paren", "while x { }", 1, "line 1: expected ( but found x"},
		{"missing function body", "fun f()\nreturn 1", 2, "line 2: expected { but found return"},
		{"return without value", "fun f() { return }", 1, "line 1: unexpected token }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource(tt.input)
			if err == nil {
				t.Fatalf("ParseSource(%q) should fail", tt.input)
			}
			if !mdwerror.HasCode(err, mdwerror.CodeSyntax) {
				t.Errorf("code = %v, want SYNTAX_ERROR", mdwerror.GetCode(err))
			}
			if got := mdwerror.GetLine(err); got != tt.wantLine {
				t.Errorf("line = %d, want %d", got, tt.wantLine)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLexicalErrorPassesThrough(t *testing.T) {
	_, err := ParseSource("var x = 1\nx = #")
	if !mdwerror.HasCode(err, mdwerror.CodeLexical) {
		t.Fatalf("error = %v, want LEXICAL_ERROR", err)
	}
	if mdwerror.GetLine(err) != 2 {
		t.Errorf("line = %d, want 2", mdwerror.GetLine(err))
	}
}

func TestMaxDepth(t *testing.T) {
	src := ""
	for i := 0; i < 50; i++ {
		src += "("
	}
	src += "1"
	for i := 0; i < 50; i++ {
		src += ")"
	}

	if _, err := ParseSource(src); err != nil {
		t.Fatalf("default depth should accept 50 parentheses: %v", err)
	}

	tokens := mustTokens(t, src)
	_, err := New(Options{MaxDepth: 10}).Parse(tokens)
	if !mdwerror.HasCode(err, mdwerror.CodeResource) {
		t.Errorf("error = %v, want RESOURCE_EXHAUSTED for deep nesting", err)
	}
}

func TestLongChainIsNotNesting(t *testing.T) {
	src := "println(" + strings.Repeat("1 + ", 4999) + "1)"

	file, err := New(Options{MaxDepth: 10}).Parse(mustTokens(t, src))
	if err != nil {
		t.Fatalf("Parse() error = %v, want a flat chain to parse", err)
	}

	call, ok := file.Body.Statements[0].(*ast.FunctionCall)
	if !ok || len(call.Args) != 1 {
		t.Fatalf("statement = %#v, want println call with one argument", file.Body.Statements[0])
	}
	terms := 1
	for expr := call.Args[0]; ; terms++ {
		op, ok := expr.(*ast.BinaryOp)
		if !ok {
			break
		}
		if _, leftIsOp := op.Left.(*ast.BinaryOp); leftIsOp {
			t.Fatal("chain should group to the right")
		}
		expr = op.Right
	}
	if terms != 5000 {
		t.Errorf("chain has %d terms, want 5000", terms)
	}
}
