package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/funlang/foundation/core/error"
)

// Origin names the front end that submitted a run
type Origin string

const (
	OriginCLI  Origin = "cli"
	OriginGRPC Origin = "grpc"
	OriginWS   Origin = "ws"
	OriginREPL Origin = "repl"
)

// Run is one recorded program execution
type Run struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Output    string        `json:"output"`
	Error     string        `json:"error,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	Line      int           `json:"line,omitempty"`
	Duration  time.Duration `json:"duration"`
	Origin    Origin        `json:"origin"`
	CreatedAt time.Time     `json:"created_at"`
}

// Failed reports whether the run ended with an error
func (r *Run) Failed() bool {
	return r.Error != ""
}

// Filter defines criteria for listing runs
type Filter struct {
	Limit      int
	OnlyFailed bool
	Origin     Origin
}

// Stats summarizes the stored runs
type Stats struct {
	Total    int            `json:"total"`
	Failed   int            `json:"failed"`
	ByOrigin map[Origin]int `json:"by_origin"`
}

// Store defines the interface for run history persistence
type Store interface {
	Record(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, filter Filter) ([]*Run, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the history database at path
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dbError(err, "failed to create directory", "store.Open")
		}
	}

	// WAL lets the CLI read while a server records
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, dbError(err, "failed to open database", "store.Open")
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema", "store.Open")
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		output TEXT NOT NULL,
		error TEXT,
		error_code TEXT,
		line INTEGER,
		duration_ms INTEGER NOT NULL,
		origin TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_origin ON runs(origin);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores run, assigning an id and timestamp when missing
func (s *SQLiteStore) Record(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fillDefaults(run)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, output, error, error_code, line, duration_ms, origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Source, run.Output, nullString(run.Error), nullString(run.ErrorCode),
		run.Line, run.Duration.Milliseconds(), string(run.Origin), run.CreatedAt.UTC())
	if err != nil {
		return dbError(err, "failed to insert run", "store.Record")
	}
	return nil
}

// Get returns the run with the given id. The error has code NOT_FOUND
// when no such run exists.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, output, error, error_code, line, duration_ms, origin, created_at
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mdwerror.Newf("run %s not found", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("store.Get")
	}
	if err != nil {
		return nil, dbError(err, "failed to read run", "store.Get")
	}
	return run, nil
}

// List returns runs matching filter, newest first
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, source, output, error, error_code, line, duration_ms, origin, created_at FROM runs WHERE 1=1`
	var args []interface{}

	if filter.OnlyFailed {
		query += " AND error IS NOT NULL AND error != ''"
	}
	if filter.Origin != "" {
		query += " AND origin = ?"
		args = append(args, string(filter.Origin))
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query runs", "store.List")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan run", "store.List")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate runs", "store.List")
	}
	return runs, nil
}

// Stats counts stored runs
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{ByOrigin: make(map[Origin]int)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT origin, COUNT(*), SUM(CASE WHEN error IS NOT NULL AND error != '' THEN 1 ELSE 0 END)
		FROM runs GROUP BY origin
	`)
	if err != nil {
		return nil, dbError(err, "failed to query stats", "store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var origin string
		var total, failed int
		if err := rows.Scan(&origin, &total, &failed); err != nil {
			return nil, dbError(err, "failed to scan stats", "store.Stats")
		}
		stats.ByOrigin[Origin(origin)] = total
		stats.Total += total
		stats.Failed += failed
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to iterate stats", "store.Stats")
	}
	return stats, nil
}

// Prune removes runs older than olderThan and returns how many were deleted
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if err := checkAge(olderThan); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan).UTC()
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, dbError(err, "failed to prune runs", "store.Prune")
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// checkAge rejects a prune age that would match every run
func checkAge(olderThan time.Duration) error {
	if olderThan <= 0 {
		return mdwerror.Newf("prune age must be positive, got %s", olderThan).
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("store.Prune")
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var runErr, code sql.NullString
	var line sql.NullInt64
	var durationMS int64
	var origin string

	if err := row.Scan(&run.ID, &run.Source, &run.Output, &runErr, &code, &line,
		&durationMS, &origin, &run.CreatedAt); err != nil {
		return nil, err
	}

	run.Error = runErr.String
	run.ErrorCode = code.String
	run.Line = int(line.Int64)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Origin = Origin(origin)
	return &run, nil
}

func fillDefaults(run *Run) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.Origin == "" {
		run.Origin = OriginCLI
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func dbError(err error, message, op string) *mdwerror.Error {
	return mdwerror.Wrap(err, message).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}

// MemoryStore is an in-memory implementation for testing and for running
// with history disabled on disk
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record stores a copy of run
func (m *MemoryStore) Record(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fillDefaults(run)
	stored := *run
	m.runs = append(m.runs, &stored)
	return nil
}

// Get returns the run with the given id
func (m *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, run := range m.runs {
		if run.ID == id {
			found := *run
			return &found, nil
		}
	}
	return nil, mdwerror.Newf("run %s not found", id).
		WithCode(mdwerror.CodeNotFound).
		WithOperation("store.Get")
}

// List returns runs matching filter, newest first
func (m *MemoryStore) List(_ context.Context, filter Filter) ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Run
	for i := len(m.runs) - 1; i >= 0; i-- {
		run := m.runs[i]
		if filter.OnlyFailed && !run.Failed() {
			continue
		}
		if filter.Origin != "" && run.Origin != filter.Origin {
			continue
		}
		found := *run
		out = append(out, &found)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// Stats counts stored runs
func (m *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{ByOrigin: make(map[Origin]int)}
	for _, run := range m.runs {
		stats.Total++
		stats.ByOrigin[run.Origin]++
		if run.Failed() {
			stats.Failed++
		}
	}
	return stats, nil
}

// Prune removes runs older than olderThan
func (m *MemoryStore) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	if err := checkAge(olderThan); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	kept := m.runs[:0]
	var deleted int64
	for _, run := range m.runs {
		if run.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, run)
	}
	m.runs = kept
	return deleted, nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// String renders a one-line summary used by the CLI
func (r *Run) String() string {
	status := "ok"
	if r.Failed() {
		status = r.ErrorCode
	}
	return fmt.Sprintf("%s  %s  %-5s  %-18s  %dms", r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		r.Origin, status, r.Duration.Milliseconds())
}
