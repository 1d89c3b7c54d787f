package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/foxseedlab/matome/internal/cache"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the database file at path and migrates it.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := RunSQLiteMigration(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

var _ cache.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var summary string
	err := s.db.QueryRowContext(ctx,
		`SELECT summary FROM summary_cache WHERE cache_key = ?`,
		key).Scan(&summary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return summary, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summary_cache (cache_key, summary)
		 VALUES (?, ?)
		 ON CONFLICT (cache_key) DO UPDATE SET summary = excluded.summary, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	return err
}

func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}
