// Package history persists finished checks in SQLite.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Faultbox/dicebowl/internal/game/check"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("history store closed")

//go:embed schema.sql
var schema string

// Store is a SQLite-backed check.Recorder.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

// Record implements check.Recorder.
func (s *Store) Record(ctx context.Context, r check.Result) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if r.Type != check.KindAttribute && r.Type != check.KindTalent {
		return fmt.Errorf("record: unknown result type %q", r.Type)
	}
	if r.At.IsZero() {
		r.At = time.Now()
	}

	rolls, err := json.Marshal(r.Rolls())
	if err != nil {
		return fmt.Errorf("encode rolls: %w", err)
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	_, err = db.ExecContext(ctx, `
INSERT INTO rolls (
	kind,
	name,
	rolls,
	success,
	quality_level,
	critical,
	modifier,
	payload,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		string(r.Type),
		r.Name(),
		string(rolls),
		r.Success(),
		r.QualityLevel(),
		r.CriticalLabel(),
		modifier(r),
		string(payload),
		r.At.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record roll: %w", err)
	}
	return nil
}

func modifier(r check.Result) int {
	switch {
	case r.Attribute != nil:
		return r.Attribute.Modifier
	case r.Talent != nil:
		return r.Talent.Modifier
	}
	return 0
}

// Recent returns up to limit results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]check.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := db.QueryContext(ctx, `
SELECT payload, created_at
FROM rolls
ORDER BY created_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list rolls: %w", err)
	}
	defer rows.Close()

	out := make([]check.Result, 0, limit)
	for rows.Next() {
		var (
			payload string
			created int64
		)
		if err := rows.Scan(&payload, &created); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		var r check.Result
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decode roll: %w", err)
		}
		r.At = time.UnixMilli(created).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rolls: %w", err)
	}
	return out, nil
}

// Count returns the number of stored results.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rolls`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rolls: %w", err)
	}
	return n, nil
}

// Clear deletes every stored result.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM rolls`); err != nil {
		return fmt.Errorf("clear rolls: %w", err)
	}
	return nil
}
