package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/foxseedlab/matome/internal/cache"
	"github.com/foxseedlab/matome/internal/config"
	"github.com/foxseedlab/matome/internal/webhook"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (cache.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()

		store, err := openStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.SummaryWebhookURL == "" {
			return store, nil
		}
		sender := do.MustInvoke[webhook.Sender](i)
		return cache.WithHooks(store, webhook.CacheHook(sender, time.Now)), nil
	})
}

func openStore(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheDriver {
	case config.CacheDriverSQLite:
		store, err := OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.CacheDriverPostgres:
		return openPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.CacheDriver)
	}
}

func openPostgresStore(ctx context.Context, databaseURL string) (cache.Store, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunPostgresMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	return NewPostgresStore(p), nil
}
