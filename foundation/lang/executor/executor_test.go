// File: executor_test.go
// Title: Evaluator Tests
// Description: Program level tests for output, scoping, return signals,
//              short-circuit evaluation and runtime errors.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial tests

package executor

import (
	"bytes"
	"context"
	"testing"
	"time"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/foundation/lang/parser"
	"github.com/msto63/funlang/foundation/lang/stdlib"
)

func newTestExecutor(maxDepth int) (*Executor, *bytes.Buffer) {
	var out bytes.Buffer
	exec := New(Options{
		Logger:       mdwlog.Discard(),
		MaxCallDepth: maxDepth,
		Stdlib:       stdlib.New(&out),
	})
	return exec, &out
}

func run(t *testing.T, exec *Executor, src string) error {
	t.Helper()
	file, err := parser.ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource(%q) error = %v", src, err)
	}
	return exec.Run(context.Background(), file)
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "fibonacci",
			src: `fun fib(n) {
    if (n <= 1) {
        return 1
    }
    return fib(n - 1) + fib(n - 2)
}
var i = 3
while (i <= 5) {
    println(i, fib(i))
    i = i + 1
}`,
			want: "3 3\n4 5\n5 8\n",
		},
		{"or skips right side", "println(1 || x)", "1\n"},
		{"and skips right side", "println(0 && x)", "0\n"},
		{"logical values", "println(2 && 5, 0 || 7, 3 || 0, 0 || 0)", "5 7 1 0\n"},
		{"reassignment reaches ancestor", "var a=1; fun set(){ a = 2 }; set(); println(a)", "2\n"},
		{"arithmetic", "println(7 / 2, 7 % 3, 2 * 3 + 1, 10 - 4)", "3 1 7 6\n"},
		{"truncating division", "println((0 - 7) / 2, (0 - 7) % 2)", "-3 -1\n"},
		{"same level groups right", "println(10 - 4 - 3)", "9\n"},
		{"comparisons", "println(1 < 2, 2 <= 2, 3 > 4, 4 >= 5, 1 == 1, 1 != 1)", "1 1 0 0 1 0\n"},
		{"wrapping overflow", "println(9223372036854775807 + 1)", "-9223372036854775808\n"},
		{"else branch", "if (0) { println(1) } else { println(2) }", "2\n"},
		{"then branch", "if (5) { println(1) } else { println(2) }", "1\n"},
		{"if without else", "if (0) { println(1) }\nprintln(3)", "3\n"},
		{"var defaults to zero", "var x\nprintln(x)", "0\n"},
		{"redeclaration overwrites", "var x = 1\nvar x = 2\nprintln(x)", "2\n"},
		{"missing return yields zero", "fun f() { var x = 1 }\nprintln(f())", "0\n"},
		{"println yields zero", "println(println(4))", "4\n0\n"},
		{
			name: "return leaves loop and function",
			src: `fun first() {
    var i = 0
    while (1) {
        i = i + 1
        if (i == 3) { return i }
    }
}
println(first())`,
			want: "3\n",
		},
		{
			name: "call statement does not return from caller",
			src: `fun g() { return 5 }
fun h() {
    g()
    println(1)
    return 2
}
println(h())`,
			want: "1\n2\n",
		},
		{"top level return stops program", "println(1)\nreturn 0\nprintln(2)", "1\n"},
		{
			name: "nested function sees outer parameter",
			src: `fun foo(n) {
    fun bar(m) {
        return m + n
    }
    return bar(1)
}
println(foo(50))`,
			want: "51\n",
		},
		{
			name: "callee sees caller locals",
			src: `fun show() { return x }
fun caller() {
    var x = 7
    return show()
}
println(caller())`,
			want: "7\n",
		},
		{
			name: "parameters shadow globals",
			src: `var n = 1
fun f(n) { n = n + 10
 return n }
println(f(5), n)`,
			want: "15 1\n",
		},
		{
			name: "loop body writes through to outer scope",
			src: `var sum = 0
var i = 0
while (i < 4) {
    var step = i * 2
    sum = sum + step
    i = i + 1
}
println(sum, i)`,
			want: "12 4\n",
		},
		{"functions and variables are separate", "var f = 3\nfun f() { return 4 }\nprintln(f, f())", "3 4\n"},
		{"arguments left to right", "fun p(v) { println(v)\n return v }\nprintln(p(1) + p(2))", "1\n2\n3\n"},
		{"empty program", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, out := newTestExecutor(0)
			if err := run(t, exec, tt.src); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		code     mdwerror.Code
		line     int
		msg      string
		wantOut  string
		maxDepth int
	}{
		{name: "unknown variable", src: "println(x)", code: mdwerror.CodeName, line: 1, msg: "line 1: undefined variable x"},
		{name: "assign undeclared", src: "\nx = 1", code: mdwerror.CodeName, line: 2, msg: "line 2: undefined variable x"},
		{name: "unknown function", src: "f()", code: mdwerror.CodeName, line: 1, msg: "line 1: undefined function f"},
		{name: "variable is not a function", src: "var f = 1\nf()", code: mdwerror.CodeName, line: 2, msg: "line 2: undefined function f"},
		{
			name: "arity",
			src:  "fun f(a) { return a }\nf(1, 2)",
			code: mdwerror.CodeArity, line: 2,
			msg: "line 2: function f expects 1 arguments, got 2",
		},
		{name: "division by zero", src: "println(1 / 0)", code: mdwerror.CodeArithmetic, line: 1, msg: "line 1: division by zero"},
		{name: "modulo by zero", src: "var z\nprintln(1 % z)", code: mdwerror.CodeArithmetic, line: 2, msg: "line 2: division by zero"},
		{
			name: "side effects stay visible",
			src:  "println(1)\nprintln(y)",
			code: mdwerror.CodeName, line: 2, msg: "line 2: undefined variable y",
			wantOut: "1\n",
		},
		{
			name: "block locals are gone after the block",
			src:  "if (1) { var t = 1 }\nprintln(t)",
			code: mdwerror.CodeName, line: 2, msg: "line 2: undefined variable t",
		},
		{
			name: "loop locals do not survive iterations",
			src:  "var i = 0\nwhile (i < 2) {\n  if (i == 1) { println(t) }\n  var t = 5\n  i = i + 1\n}",
			code: mdwerror.CodeName, line: 3, msg: "line 3: undefined variable t",
		},
		{
			name: "callee cannot see definition scope",
			src:  "fun show() { return x }\nprintln(show())",
			code: mdwerror.CodeName, line: 1, msg: "line 1: undefined variable x",
		},
		{
			name:     "call depth",
			src:      "fun r(n) {\n  return r(n + 1)\n}\nr(0)",
			code:     mdwerror.CodeResource,
			line:     2,
			msg:      "line 2: call depth limit 50 exceeded",
			maxDepth: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec, out := newTestExecutor(tt.maxDepth)
			err := run(t, exec, tt.src)
			if err == nil {
				t.Fatal("Run() should fail")
			}
			if !mdwerror.HasCode(err, tt.code) {
				t.Errorf("code = %v, want %v", mdwerror.GetCode(err), tt.code)
			}
			if got := mdwerror.GetLine(err); got != tt.line {
				t.Errorf("line = %d, want %d", got, tt.line)
			}
			if err.Error() != tt.msg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.msg)
			}
			if out.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestCallDepthWithinLimit(t *testing.T) {
	exec, out := newTestExecutor(50)
	src := "fun d(n) { if (n == 0) { return 0 } return d(n - 1) }\nprintln(d(40))"
	if err := run(t, exec, src); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != "0\n" {
		t.Errorf("output = %q, want %q", out.String(), "0\n")
	}
	if got := exec.Stats().MaxDepth; got != 41 {
		t.Errorf("Stats().MaxDepth = %d, want 41", got)
	}
}

func TestCancellation(t *testing.T) {
	file, err := parser.ParseSource("var i = 0\nwhile (1) {\n  i = i + 1\n}")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("already cancelled", func(t *testing.T) {
		exec, _ := newTestExecutor(0)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := exec.Run(ctx, file)
		if !mdwerror.HasCode(err, mdwerror.CodeCancelled) {
			t.Fatalf("error = %v, want CANCELLED", err)
		}
		if mdwerror.GetLine(err) != 2 {
			t.Errorf("line = %d, want 2", mdwerror.GetLine(err))
		}
	})

	t.Run("deadline", func(t *testing.T) {
		exec, _ := newTestExecutor(0)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := exec.Run(ctx, file)
		if !mdwerror.HasCode(err, mdwerror.CodeCancelled) {
			t.Fatalf("error = %v, want CANCELLED", err)
		}
		if exec.Globals()["i"] == 0 {
			t.Error("loop never ran before the deadline")
		}
	})
}

func TestStatePersistsAcrossRuns(t *testing.T) {
	exec, out := newTestExecutor(0)

	if err := run(t, exec, "var a = 5\nfun twice(x) { return x * 2 }"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, exec, "println(twice(a))"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "10\n" {
		t.Errorf("output = %q, want %q", out.String(), "10\n")
	}
	if got := exec.Globals()["a"]; got != 5 {
		t.Errorf("Globals()[a] = %d, want 5", got)
	}

	exec.Reset()
	err := run(t, exec, "println(a)")
	if !mdwerror.HasCode(err, mdwerror.CodeName) {
		t.Errorf("after Reset() error = %v, want NAME_ERROR", err)
	}
}

func TestFailedRunKeepsRootUsable(t *testing.T) {
	exec, out := newTestExecutor(0)

	if err := run(t, exec, "fun f(n) { if (n) { return missing } return 0 }\nvar kept = 1\nf(1)"); err == nil {
		t.Fatal("first Run() should fail")
	}
	if err := run(t, exec, "println(kept, f(0))"); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if out.String() != "1 0\n" {
		t.Errorf("output = %q, want %q", out.String(), "1 0\n")
	}
}

func TestUnknownOperator(t *testing.T) {
	exec, _ := newTestExecutor(0)
	file := &ast.File{Body: &ast.Block{Statements: []ast.Statement{
		&ast.BinaryOp{
			Left:     &ast.NumberLiteral{Value: 1},
			Operator: "^",
			Right:    &ast.NumberLiteral{Value: 2},
			Pos:      ast.Position{Line: 4},
		},
	}}}

	err := exec.Run(context.Background(), file)
	if !mdwerror.HasCode(err, mdwerror.CodeInternal) {
		t.Fatalf("error = %v, want INTERNAL", err)
	}
	if mdwerror.GetLine(err) != 4 {
		t.Errorf("line = %d, want 4", mdwerror.GetLine(err))
	}
}

func TestBuiltinErrorsGetCallLine(t *testing.T) {
	var out bytes.Buffer
	lib := stdlib.New(&out)
	lib.Register("fail", func(context.Context, []int64) (int64, error) {
		return 0, mdwerror.New("host failure").WithCode(mdwerror.CodeInternal)
	})
	exec := New(Options{Logger: mdwlog.Discard(), Stdlib: lib})

	err := run(t, exec, "var x = 1\nx = fail(1, 2, 3)")
	if !mdwerror.HasCode(err, mdwerror.CodeInternal) {
		t.Fatalf("error = %v, want INTERNAL", err)
	}
	if mdwerror.GetLine(err) != 2 {
		t.Errorf("line = %d, want 2", mdwerror.GetLine(err))
	}
}

func TestStats(t *testing.T) {
	exec, _ := newTestExecutor(0)
	if err := run(t, exec, "fun f() { return 1 }\nf()\nf()\nprintln(f())"); err != nil {
		t.Fatal(err)
	}
	if got := exec.Stats().Calls; got != 4 {
		t.Errorf("Stats().Calls = %d, want 4", got)
	}
}
