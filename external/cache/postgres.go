package cache

import (
	"context"
	"errors"

	"github.com/foxseedlab/matome/internal/cache"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) cache.Store {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var summary string
	err := s.pool.QueryRow(ctx,
		`SELECT summary FROM summary_cache WHERE cache_key = $1`,
		key).Scan(&summary)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return summary, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO summary_cache (cache_key, summary)
		 VALUES ($1, $2)
		 ON CONFLICT (cache_key) DO UPDATE SET summary = EXCLUDED.summary, updated_at = NOW()`,
		key, value)
	return err
}

func (s *PostgresStore) Shutdown() error {
	s.pool.Close()
	return nil
}
