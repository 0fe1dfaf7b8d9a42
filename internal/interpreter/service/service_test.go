package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/pkg/core/cache"
	"github.com/msto63/funlang/pkg/core/health"
)

func newTestService(t *testing.T, history store.Store, timeout time.Duration) *Service {
	t.Helper()
	engine, err := lang.New(lang.Options{
		Logger:         mdwlog.Discard(),
		Stdout:         io.Discard,
		MaxSourceBytes: 256,
	})
	if err != nil {
		t.Fatalf("lang.New() error = %v", err)
	}
	svc, err := NewService(Config{Engine: engine, History: history, Timeout: timeout, Logger: mdwlog.Discard()})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestNewServiceRequiresEngine(t *testing.T) {
	_, err := NewService(Config{})
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidConfig) {
		t.Errorf("NewService() error = %v, want INVALID_CONFIG", err)
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		output string
		code   string
		line   int
	}{
		{"success", "println(1 + 2)", "3\n", "", 0},
		{"name error", "println(1)\nprintln(x)", "1\n", "NAME_ERROR", 2},
		{"syntax error", "var = 1", "", "SYNTAX_ERROR", 1},
		{"arithmetic", "var z = 0\nprintln(1 / z)", "", "ARITHMETIC_ERROR", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := store.NewMemoryStore()
			svc := newTestService(t, history, 0)

			run, err := svc.Run(context.Background(), tt.src, store.OriginGRPC)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if run.Output != tt.output {
				t.Errorf("Output = %q, want %q", run.Output, tt.output)
			}
			if run.ErrorCode != tt.code {
				t.Errorf("ErrorCode = %q, want %q", run.ErrorCode, tt.code)
			}
			if run.Line != tt.line {
				t.Errorf("Line = %d, want %d", run.Line, tt.line)
			}
			if tt.code != "" && !strings.HasPrefix(run.Error, "line ") {
				t.Errorf("Error = %q, want line prefix", run.Error)
			}

			stored, err := history.Get(context.Background(), run.ID)
			if err != nil {
				t.Fatalf("history.Get() error = %v", err)
			}
			if stored.Origin != store.OriginGRPC || stored.Source != tt.src {
				t.Errorf("stored run = %+v", stored)
			}
		})
	}
}

func TestRunReusesParsedPrograms(t *testing.T) {
	svc := newTestService(t, nil, 0)
	svc.parsed = cache.New[*ast.File](cache.Config{MaxItems: 8})
	defer svc.parsed.Close()

	for i := 0; i < 3; i++ {
		run, err := svc.Run(context.Background(), "var a = 20\nprintln(a + 22)", store.OriginCLI)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if run.Output != "42\n" || run.Failed() {
			t.Fatalf("run %d = %+v", i, run)
		}
	}

	// syntax errors are reported every time and never cached
	for i := 0; i < 2; i++ {
		run, err := svc.Run(context.Background(), "var = 1", store.OriginCLI)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if run.ErrorCode != "SYNTAX_ERROR" {
			t.Errorf("ErrorCode = %q, want SYNTAX_ERROR", run.ErrorCode)
		}
	}

	stats := svc.parsed.Stats()
	if stats.Size != 1 || stats.Hits != 2 || stats.Misses != 3 {
		t.Errorf("cache stats = %+v, want size 1, 2 hits, 3 misses", stats)
	}
}

func TestRunRejectsOversizedSource(t *testing.T) {
	history := store.NewMemoryStore()
	svc := newTestService(t, history, 0)

	_, err := svc.Run(context.Background(), strings.Repeat("1;", 200), store.OriginWS)
	if !mdwerror.HasCode(err, mdwerror.CodeInvalidInput) {
		t.Fatalf("Run() error = %v, want INVALID_INPUT", err)
	}
	stats, _ := history.Stats(context.Background())
	if stats.Total != 0 {
		t.Errorf("rejected source was recorded: %+v", stats)
	}
}

func TestRunTimeout(t *testing.T) {
	history := store.NewMemoryStore()
	svc := newTestService(t, history, 20*time.Millisecond)

	run, err := svc.Run(context.Background(), "while (1) { }", store.OriginCLI)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.ErrorCode != string(mdwerror.CodeCancelled) {
		t.Errorf("ErrorCode = %q, want CANCELLED", run.ErrorCode)
	}
	if _, err := history.Get(context.Background(), run.ID); err != nil {
		t.Errorf("timed out run not recorded: %v", err)
	}
}

func TestRunWithoutHistory(t *testing.T) {
	svc := newTestService(t, nil, 0)

	run, err := svc.Run(context.Background(), "println(7)", store.OriginCLI)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.ID == "" {
		t.Error("run id should be assigned without history")
	}
	if svc.History() != nil {
		t.Error("History() should be nil")
	}
}

type failingStore struct {
	store.MemoryStore
}

func (f *failingStore) Record(context.Context, *store.Run) error {
	return errors.New("disk full")
}

func TestRecordFailureDoesNotFailRun(t *testing.T) {
	svc := newTestService(t, &failingStore{}, 0)

	run, err := svc.Run(context.Background(), "println(5)", store.OriginWS)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.Output != "5\n" || run.ID == "" {
		t.Errorf("run = %+v", run)
	}
}

func TestTokenize(t *testing.T) {
	svc := newTestService(t, nil, 0)

	tokens, err := svc.Tokenize("var a = 1")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if len(tokens) != 4 {
		t.Errorf("Tokenize() returned %d tokens, want 4", len(tokens))
	}
}

func TestHealthChecks(t *testing.T) {
	tests := []struct {
		name    string
		history store.Store
		checks  int
	}{
		{"with history", store.NewMemoryStore(), 2},
		{"without history", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.history, 0)
			checks := svc.HealthChecks()
			if len(checks) != tt.checks {
				t.Fatalf("len(HealthChecks()) = %d, want %d", len(checks), tt.checks)
			}
			for _, c := range checks {
				if got := c.Check(context.Background()); got.Status != health.StatusHealthy {
					t.Errorf("%s: Status = %v (%s)", c.Name(), got.Status, got.Message)
				}
			}
		})
	}
}
