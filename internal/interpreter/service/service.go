package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/foundation/lang/token"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/pkg/core/cache"
	"github.com/msto63/funlang/pkg/core/health"
)

// Config holds service configuration
type Config struct {
	// Engine runs the programs (required)
	Engine *lang.Engine

	// History records every run. Nil disables recording.
	History store.Store

	// ParseCache keeps syntax trees of recently run programs, keyed by
	// source hash. Nil parses every run.
	ParseCache *cache.Cache[*ast.File]

	// Timeout bounds a single run. Zero means no limit.
	Timeout time.Duration

	Logger *mdwlog.Logger
}

// Service runs programs on behalf of the CLI, gRPC and WebSocket front ends
type Service struct {
	engine  *lang.Engine
	history store.Store
	parsed  *cache.Cache[*ast.File]
	timeout time.Duration
	logger  *mdwlog.Logger
}

// NewService creates a new interpreter service
func NewService(cfg Config) (*Service, error) {
	if cfg.Engine == nil {
		return nil, mdwerror.New("engine is required").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("service.NewService")
	}
	if cfg.Timeout < 0 {
		return nil, mdwerror.New("timeout must not be negative").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("service.NewService")
	}
	if cfg.Logger == nil {
		cfg.Logger = mdwlog.GetDefault()
	}

	return &Service{
		engine:  cfg.Engine,
		history: cfg.History,
		parsed:  cfg.ParseCache,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.WithField("component", "interpreter-service"),
	}, nil
}

// Run executes src and returns the run record. Failures of the program
// itself are reported in the record; the error is reserved for requests
// that could not be run at all.
func (s *Service) Run(ctx context.Context, src string, origin store.Origin) (*store.Run, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.execute(ctx, src)
	if mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		return nil, err
	}

	run := &store.Run{
		Source: src,
		Origin: origin,
	}
	if result != nil {
		run.Output = result.Output
		run.Duration = result.Duration
	}
	if err != nil {
		run.Error = err.Error()
		run.ErrorCode = string(mdwerror.GetCode(err))
		run.Line = lang.Line(err)
	}

	s.record(ctx, run)

	s.logger.Debug("Run finished", mdwlog.Fields{
		"run_id":      run.ID,
		"origin":      string(origin),
		"failed":      run.Failed(),
		"duration_ms": run.Duration.Milliseconds(),
	})
	return run, nil
}

// execute runs src, reusing a cached syntax tree when one exists. Syntax
// errors are not cached.
func (s *Service) execute(ctx context.Context, src string) (*lang.Result, error) {
	if s.parsed == nil {
		return s.engine.Run(ctx, src)
	}

	sum := sha256.Sum256([]byte(src))
	file, err := s.parsed.GetOrSet(hex.EncodeToString(sum[:]), func() (*ast.File, error) {
		return s.engine.Parse(src)
	})
	if err != nil {
		return &lang.Result{}, err
	}
	return s.engine.RunFile(ctx, file)
}

// Tokenize splits src into tokens
func (s *Service) Tokenize(src string) ([]token.Token, error) {
	return s.engine.Tokenize(src)
}

// History returns the run store, or nil when recording is disabled
func (s *Service) History() store.Store {
	return s.history
}

// record stores run without failing the request. The run keeps an id
// even when recording is disabled.
func (s *Service) record(ctx context.Context, run *store.Run) {
	if s.history == nil {
		run.ID = uuid.New().String()
		return
	}

	// a timed out run must still be recorded
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}
	if err := s.history.Record(ctx, run); err != nil {
		s.logger.WarnWithErr("Failed to record run", err, mdwlog.Fields{"origin": string(run.Origin)})
		if run.ID == "" {
			run.ID = uuid.New().String()
		}
	}
}

// selfTest prints nothing and fails only if arithmetic is broken
const selfTest = "if (6 * 7 != 42) { selftest_failed() }"

// HealthChecks returns the checks serve registers for this service
func (s *Service) HealthChecks() []health.Checker {
	checks := []health.Checker{
		health.NewChecker("interpreter", func(ctx context.Context) health.CheckResult {
			if _, err := s.engine.Run(ctx, selfTest); err != nil {
				return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
			}
			result := health.CheckResult{Status: health.StatusHealthy}
			if s.parsed != nil {
				result.Details = map[string]interface{}{"parse_cache": s.parsed.Stats()}
			}
			return result
		}),
	}

	if s.history != nil {
		checks = append(checks, health.NewChecker("history", func(ctx context.Context) health.CheckResult {
			stats, err := s.history.Stats(ctx)
			if err != nil {
				// runs still execute without history
				return health.CheckResult{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.CheckResult{
				Status:  health.StatusHealthy,
				Details: map[string]interface{}{"runs": stats.Total},
			}
		}))
	}
	return checks
}
