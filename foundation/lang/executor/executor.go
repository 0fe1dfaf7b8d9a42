// File: executor.go
// Title: Tree-Walking Evaluator
// Description: Executes statements and evaluates expressions against the
//              scope arena, seeding the root scope from the standard
//              library and enforcing call depth and cancellation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial evaluator implementation

package executor

import (
	"context"
	"errors"
	"fmt"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/foundation/lang/scope"
	"github.com/msto63/funlang/foundation/lang/stdlib"
)

// DefaultMaxCallDepth bounds nested user function calls
const DefaultMaxCallDepth = 10000

// Options configures executor behavior
type Options struct {
	Logger *mdwlog.Logger

	// MaxCallDepth bounds nested user calls (default: DefaultMaxCallDepth)
	MaxCallDepth int

	// Stdlib is installed into the root scope (default: println to stdout)
	Stdlib *stdlib.Library
}

// Stats counts work done by the most recent Run
type Stats struct {
	Statements int64
	Calls      int64
	MaxDepth   int
}

// Executor evaluates programs against a persistent root scope
type Executor struct {
	arena   *scope.Arena
	root    scope.ID
	lib     *stdlib.Library
	logger  *mdwlog.Logger
	options Options

	depth int
	stats Stats
}

// signal carries the value of an explicit return up to the nearest call
type signal struct {
	value    int64
	returned bool
}

// New creates an executor with a fresh root scope
func New(opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Stdlib == nil {
		opts.Stdlib = stdlib.New(nil)
	}

	e := &Executor{
		lib:     opts.Stdlib,
		logger:  opts.Logger.WithField("component", "lang-executor"),
		options: opts,
	}
	e.Reset()
	return e
}

// Reset discards every binding and reseeds the root scope
func (e *Executor) Reset() {
	e.arena = scope.NewArena()
	e.root = e.arena.Enter(scope.None)
	e.lib.Install(e.arena, e.root)
	e.depth = 0
}

// Run executes file in the root scope. Declarations made at top level
// persist for later runs. A top-level return ends the program.
func (e *Executor) Run(ctx context.Context, file *ast.File) error {
	if file == nil || file.Body == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.stats = Stats{}
	e.depth = 0
	e.logger.Debug("Executing program", mdwlog.Fields{"statements": len(file.Body.Statements)})

	sig, err := e.execBlock(ctx, file.Body, e.root)
	// discard scopes left by an aborted run
	e.arena.Leave(e.root + 1)
	if err != nil {
		e.logger.Debug("Program failed", mdwlog.Fields{
			"error":      err.Error(),
			"statements": e.stats.Statements,
		})
		return err
	}

	fields := mdwlog.Fields{
		"statements": e.stats.Statements,
		"calls":      e.stats.Calls,
		"max_depth":  e.stats.MaxDepth,
	}
	if sig.returned {
		fields["returned"] = sig.value
	}
	e.logger.Debug("Program completed", fields)
	return nil
}

// Stats returns counters of the most recent Run
func (e *Executor) Stats() Stats {
	return e.stats
}

// Globals returns the variables currently bound in the root scope
func (e *Executor) Globals() map[string]int64 {
	return e.arena.Variables(e.root)
}

func (e *Executor) execBlock(ctx context.Context, block *ast.Block, id scope.ID) (signal, error) {
	for _, stmt := range block.Statements {
		sig, err := e.exec(ctx, stmt, id)
		if err != nil || sig.returned {
			return sig, err
		}
	}
	return signal{}, nil
}

// execChild runs block in a new child scope of parent
func (e *Executor) execChild(ctx context.Context, block *ast.Block, parent scope.ID) (signal, error) {
	child := e.arena.Enter(parent)
	defer e.arena.Leave(child)
	return e.execBlock(ctx, block, child)
}

func (e *Executor) exec(ctx context.Context, stmt ast.Statement, id scope.ID) (signal, error) {
	e.stats.Statements++

	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		e.arena.DefineFunction(id, scope.Function{Name: s.Name.Name, Decl: s})
		return signal{}, nil

	case *ast.VarDecl:
		var value int64
		if s.Init != nil {
			v, err := e.eval(ctx, s.Init, id)
			if err != nil {
				return signal{}, err
			}
			value = v
		}
		e.arena.Declare(id, s.Name.Name, value)
		return signal{}, nil

	case *ast.Assignment:
		value, err := e.eval(ctx, s.Value, id)
		if err != nil {
			return signal{}, err
		}
		if !e.arena.Assign(id, s.Target.Name, value) {
			return signal{}, nameError(s.Target.Pos.Line, "undefined variable %s", s.Target.Name)
		}
		return signal{}, nil

	case *ast.While:
		for {
			if err := e.checkContext(ctx, s.Pos.Line); err != nil {
				return signal{}, err
			}
			cond, err := e.eval(ctx, s.Condition, id)
			if err != nil {
				return signal{}, err
			}
			if cond == 0 {
				return signal{}, nil
			}
			sig, err := e.execChild(ctx, s.Body, id)
			if err != nil || sig.returned {
				return sig, err
			}
		}

	case *ast.If:
		cond, err := e.eval(ctx, s.Condition, id)
		if err != nil {
			return signal{}, err
		}
		branch := s.Then
		if cond == 0 {
			branch = s.Else
		}
		if branch == nil {
			return signal{}, nil
		}
		return e.execChild(ctx, branch, id)

	case *ast.Return:
		value, err := e.eval(ctx, s.Value, id)
		if err != nil {
			return signal{}, err
		}
		return signal{value: value, returned: true}, nil

	case ast.Expression:
		// the value of an expression statement is discarded; a return
		// inside a called function never escapes the call
		_, err := e.eval(ctx, s, id)
		return signal{}, err

	default:
		return signal{}, internalError(lineOf(stmt), "unsupported statement %T", stmt)
	}
}

func (e *Executor) eval(ctx context.Context, expr ast.Expression, id scope.ID) (int64, error) {
	switch x := expr.(type) {
	case *ast.NumberLiteral:
		return x.Value, nil

	case *ast.Identifier:
		value, ok := e.arena.Lookup(id, x.Name)
		if !ok {
			return 0, nameError(x.Pos.Line, "undefined variable %s", x.Name)
		}
		return value, nil

	case *ast.FunctionCall:
		return e.call(ctx, x, id)

	case *ast.BinaryOp:
		return e.binary(ctx, x, id)

	default:
		return 0, internalError(lineOf(expr), "unsupported expression %T", expr)
	}
}

func (e *Executor) call(ctx context.Context, call *ast.FunctionCall, id scope.ID) (int64, error) {
	line := call.Pos.Line
	name := call.Callee.Name

	if err := e.checkContext(ctx, line); err != nil {
		return 0, err
	}

	fn, ok := e.arena.LookupFunction(id, name)
	if !ok {
		return 0, nameError(line, "undefined function %s", name)
	}
	if arity := fn.Arity(); arity >= 0 && arity != len(call.Args) {
		return 0, mdwerror.Newf("function %s expects %d arguments, got %d", name, arity, len(call.Args)).
			WithCode(mdwerror.CodeArity).
			WithLine(line).
			WithDetail("function", name).
			WithOperation("executor.call")
	}

	// arguments are evaluated left to right in the caller's scope
	args := make([]int64, len(call.Args))
	for i, arg := range call.Args {
		v, err := e.eval(ctx, arg, id)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}

	e.stats.Calls++

	if fn.IsBuiltin() {
		value, err := fn.Builtin(ctx, args)
		if err != nil {
			return 0, withLine(err, line)
		}
		return value, nil
	}

	if e.depth >= e.options.MaxCallDepth {
		return 0, mdwerror.Newf("call depth limit %d exceeded", e.options.MaxCallDepth).
			WithCode(mdwerror.CodeResource).
			WithLine(line).
			WithDetail("function", name).
			WithOperation("executor.call")
	}
	e.depth++
	if e.depth > e.stats.MaxDepth {
		e.stats.MaxDepth = e.depth
	}
	defer func() { e.depth-- }()

	// the callee's scope hangs off the caller's scope
	frame := e.arena.Enter(id)
	defer e.arena.Leave(frame)
	for i, param := range fn.Decl.Params {
		e.arena.Declare(frame, param.Name, args[i])
	}

	sig, err := e.execBlock(ctx, fn.Decl.Body, frame)
	if err != nil {
		return 0, err
	}
	return sig.value, nil
}

func (e *Executor) binary(ctx context.Context, op *ast.BinaryOp, id scope.ID) (int64, error) {
	left, err := e.eval(ctx, op.Left, id)
	if err != nil {
		return 0, err
	}

	switch op.Operator {
	case "||":
		if left != 0 {
			return 1, nil
		}
		return e.eval(ctx, op.Right, id)
	case "&&":
		if left == 0 {
			return 0, nil
		}
		return e.eval(ctx, op.Right, id)
	}

	right, err := e.eval(ctx, op.Right, id)
	if err != nil {
		return 0, err
	}
	return apply(op.Operator, left, right, op.Pos.Line)
}

func apply(operator string, l, r int64, line int) (int64, error) {
	switch operator {
	case "+":
		return l + r, nil
	case "-":
		return l - r, nil
	case "*":
		return l * r, nil
	case "/", "%":
		if r == 0 {
			return 0, mdwerror.New("division by zero").
				WithCode(mdwerror.CodeArithmetic).
				WithLine(line).
				WithOperation("executor.binary")
		}
		if operator == "/" {
			return l / r, nil
		}
		return l % r, nil
	case "==":
		return boolInt(l == r), nil
	case "!=":
		return boolInt(l != r), nil
	case "<":
		return boolInt(l < r), nil
	case ">":
		return boolInt(l > r), nil
	case "<=":
		return boolInt(l <= r), nil
	case ">=":
		return boolInt(l >= r), nil
	default:
		return 0, internalError(line, "unknown operator %s", operator)
	}
}

func (e *Executor) checkContext(ctx context.Context, line int) error {
	if err := ctx.Err(); err != nil {
		return mdwerror.Wrap(err, "execution cancelled").
			WithCode(mdwerror.CodeCancelled).
			WithLine(line).
			WithOperation("executor.Run")
	}
	return nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func lineOf(node ast.Node) int {
	if node == nil {
		return 0
	}
	return node.Position().Line
}

func nameError(line int, format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf(format, args...)).
		WithCode(mdwerror.CodeName).
		WithLine(line).
		WithOperation("executor.Run")
}

func internalError(line int, format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.New(fmt.Sprintf(format, args...)).
		WithCode(mdwerror.CodeInternal).
		WithLine(line).
		WithOperation("executor.Run")
}

// withLine attaches line to a structured error that has none
func withLine(err error, line int) error {
	var e *mdwerror.Error
	if errors.As(err, &e) && e.Line() == 0 {
		e.WithLine(line)
	}
	return err
}
