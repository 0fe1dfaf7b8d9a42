// File: lang.go
// Title: Language Engine
// Description: High-level interface that tokenizes, parses and executes
//              funlang programs with output capture, size limits, call
//              depth limits and per-run timing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-18
// Modified: 2026-10-18
//
// Change History:
// - 2026-10-18 v0.1.0: Initial engine implementation

package lang

import (
	"bytes"
	"context"
	"io"
	"os"
	"sync"
	"time"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/foundation/lang/executor"
	"github.com/msto63/funlang/foundation/lang/lexer"
	"github.com/msto63/funlang/foundation/lang/parser"
	"github.com/msto63/funlang/foundation/lang/stdlib"
	"github.com/msto63/funlang/foundation/lang/token"
)

// DefaultMaxSourceBytes bounds the size of a program text
const DefaultMaxSourceBytes = 1 << 20

// Options configures the engine
type Options struct {
	Logger *mdwlog.Logger

	// MaxCallDepth bounds nested user calls (default: 10000)
	MaxCallDepth int

	// MaxSourceBytes bounds program size (default: 1 MiB)
	MaxSourceBytes int

	// Stdout receives println output (default: os.Stdout)
	Stdout io.Writer

	// Stdlib supplies additional builtins. Its println is rebound to
	// Stdout plus the per-run capture.
	Stdlib *stdlib.Library
}

// Result describes a finished run
type Result struct {
	Output     string        `json:"output"`
	Duration   time.Duration `json:"duration"`
	Statements int           `json:"statements"`
	Calls      int64         `json:"calls"`
}

// Engine runs programs. It is safe for concurrent use; every Run gets its
// own evaluator.
type Engine struct {
	logger  *mdwlog.Logger
	options Options
}

// New creates a new engine. Only the first Options value is used.
func New(opts ...Options) (*Engine, error) {
	var options Options
	if len(opts) > 0 {
		options = opts[0]
	}

	if options.MaxCallDepth < 0 || options.MaxSourceBytes < 0 {
		return nil, mdwerror.New("limits must not be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithDetail("max_call_depth", options.MaxCallDepth).
			WithDetail("max_source_bytes", options.MaxSourceBytes).
			WithOperation("lang.New")
	}

	if options.Logger == nil {
		options.Logger = mdwlog.GetDefault()
	}
	if options.MaxCallDepth == 0 {
		options.MaxCallDepth = executor.DefaultMaxCallDepth
	}
	if options.MaxSourceBytes == 0 {
		options.MaxSourceBytes = DefaultMaxSourceBytes
	}
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}
	if options.Stdlib == nil {
		options.Stdlib = stdlib.New(options.Stdout)
	}

	engine := &Engine{
		logger:  options.Logger.WithField("component", "lang-engine"),
		options: options,
	}
	engine.logger.Debug("Engine initialized", mdwlog.Fields{
		"maxCallDepth":   options.MaxCallDepth,
		"maxSourceBytes": options.MaxSourceBytes,
		"builtins":       options.Stdlib.Names(),
	})
	return engine, nil
}

// Tokenize splits src into tokens
func (e *Engine) Tokenize(src string) ([]token.Token, error) {
	if err := e.validateSource(src); err != nil {
		return nil, err
	}
	return lexer.Tokenize(src)
}

// Parse tokenizes and parses src
func (e *Engine) Parse(src string) (*ast.File, error) {
	tokens, err := e.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return parser.New(parser.Options{Logger: e.options.Logger}).Parse(tokens)
}

// Run parses and executes src in a fresh root scope. On runtime failures
// the returned Result still holds the output printed before the error.
func (e *Engine) Run(ctx context.Context, src string) (*Result, error) {
	file, err := e.Parse(src)
	if err != nil {
		e.logFailure(err)
		return &Result{}, err
	}
	return e.RunFile(ctx, file)
}

// RunFile executes an already parsed program in a fresh root scope
func (e *Engine) RunFile(ctx context.Context, file *ast.File) (*Result, error) {
	var capture bytes.Buffer
	exec := e.newExecutor(&capture)
	return e.execute(ctx, exec, file, &capture)
}

// NewSession creates a session with its own persistent root scope
func (e *Engine) NewSession() *Session {
	s := &Session{engine: e}
	s.exec = e.newExecutor(&s.capture)
	return s
}

func (e *Engine) newExecutor(capture *bytes.Buffer) *executor.Executor {
	return executor.New(executor.Options{
		Logger:       e.options.Logger,
		MaxCallDepth: e.options.MaxCallDepth,
		Stdlib:       e.options.Stdlib.WithOutput(io.MultiWriter(capture, e.options.Stdout)),
	})
}

func (e *Engine) execute(ctx context.Context, exec *executor.Executor, file *ast.File, capture *bytes.Buffer) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	timer := e.logger.StartTimer("program run").WithLevel(mdwlog.LevelDebug)
	err := exec.Run(ctx, file)
	stats := exec.Stats()

	result := &Result{
		Output:     capture.String(),
		Duration:   timer.Elapsed(),
		Statements: int(stats.Statements),
		Calls:      stats.Calls,
	}
	if err != nil {
		if IsProgramError(err) {
			timer.WithField("error", err.Error()).Stop()
		} else {
			timer.StopWithError(err)
		}
		e.logFailure(err)
		return result, err
	}
	timer.Stop()
	return result, nil
}

// logFailure keeps faults of user programs at debug level
func (e *Engine) logFailure(err error) {
	if IsProgramError(err) {
		e.logger.Debug("Program failed", mdwlog.Fields{
			"error":      err.Error(),
			"error_code": mdwerror.GetCode(err),
		})
		return
	}
	e.logger.LogError(err)
}

func (e *Engine) validateSource(src string) error {
	if len(src) > e.options.MaxSourceBytes {
		return mdwerror.Newf("source exceeds %d bytes", e.options.MaxSourceBytes).
			WithCode(mdwerror.CodeInvalidInput).
			WithDetail("size", len(src)).
			WithOperation("lang.Parse")
	}
	return nil
}

// Session evaluates a sequence of snippets against one root scope
type Session struct {
	mu      sync.Mutex
	engine  *Engine
	exec    *executor.Executor
	capture bytes.Buffer
}

// Eval parses and runs src, keeping declarations for later calls. A
// failing snippet leaves earlier definitions in place.
func (s *Session) Eval(ctx context.Context, src string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.engine.Parse(src)
	if err != nil {
		return &Result{}, err
	}
	s.capture.Reset()
	return s.engine.execute(ctx, s.exec, file, &s.capture)
}

// Reset forgets all definitions
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exec.Reset()
}

// Globals returns the session's top-level variables
func (s *Session) Globals() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec.Globals()
}
