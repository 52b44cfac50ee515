// Package sqlite implements store.Store on SQLite. It uses modernc.org/sqlite
// (pure Go driver), sqlx for row scanning, and squirrel for the dynamic
// filter queries behind the GraphQL list operations.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// timeLayout is the storage format for timestamps: UTC, second precision,
// lexicographically sortable so date filters work as plain comparisons.
const timeLayout = "2006-01-02 15:04:05"

// SQLStore is the SQLite-backed store.Store implementation.
type SQLStore struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

// Open opens (creating if needed) a SQLite database at the given path and
// migrates the schema. The database runs in WAL mode with a 5 s busy timeout
// and a single connection (SQLite serialises writes), and foreign keys are
// enforced so customer deletion cascades to orders.
func Open(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout),
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

// Ping implements store.Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close implements store.Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
