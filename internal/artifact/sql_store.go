package artifact

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects driver-specific DDL and placeholders.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// driverName is the database/sql driver registered for d.
func (d Dialect) driverName() string {
	if d == DialectPostgres {
		return "pgx"
	}
	return "sqlite"
}

func (d Dialect) schema() []string {
	if d == DialectPostgres {
		return []string{
			`CREATE TABLE IF NOT EXISTS schema_artifacts (
    id SERIAL PRIMARY KEY,
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    content BYTEA NOT NULL DEFAULT ''::bytea,
    size BIGINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    UNIQUE(run_id, path)
)`,
			`CREATE INDEX IF NOT EXISTS idx_schema_artifacts_run_id ON schema_artifacts(run_id)`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS schema_artifacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    path TEXT NOT NULL,
    content BLOB NOT NULL DEFAULT x'',
    size INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(run_id, path)
)`,
		`CREATE INDEX IF NOT EXISTS idx_schema_artifacts_run_id ON schema_artifacts(run_id)`,
	}
}

// rebind rewrites ? placeholders to $N for postgres.
func (d Dialect) rebind(q string) string {
	if d != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLStore persists artifacts in a schema_artifacts table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect

	schemaMu    sync.Mutex
	schemaReady bool
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLStore opens dsn with the driver for dialect.
func OpenSQLStore(dialect Dialect, dsn string) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is required", dialect)
	}
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// One writer; also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
	}
	return NewSQLStore(db, dialect), nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()
	if s.schemaReady {
		return nil
	}
	// A failed attempt is retried by the next call.
	for _, stmt := range s.dialect.schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create artifact schema: %w", err)
		}
	}
	s.schemaReady = true
	return nil
}

func (s *SQLStore) Put(ctx context.Context, runID, path string, content []byte) error {
	runID, path, err := normalize(runID, path)
	if err != nil {
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if content == nil {
		content = []byte{}
	}
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(`
INSERT INTO schema_artifacts (run_id, path, content, size, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (run_id, path)
DO UPDATE SET content=excluded.content, size=excluded.size, updated_at=excluded.updated_at
`), runID, path, content, int64(len(content)), time.Now().UTC())
	return err
}

func (s *SQLStore) Get(ctx context.Context, runID, path string) ([]byte, error) {
	runID, path, err := normalize(runID, path)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	var content []byte
	err = s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT content FROM schema_artifacts WHERE run_id=? AND path=?`),
		runID, path).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return content, err
}

func (s *SQLStore) List(ctx context.Context, runID string) ([]string, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind(`SELECT path FROM schema_artifacts WHERE run_id=? ORDER BY path`), runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
