package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Store keeps finished summaries. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Key identifies one summary of a video under one prompt version.
func Key(videoID, promptVersion string, timestamps bool) string {
	prefix := ""
	if timestamps {
		prefix = "timestamp-"
	}
	return prefix + videoID + "_" + promptVersion
}

// Hook runs after a value has been stored.
type Hook func(ctx context.Context, key, value string) error

const hookTimeout = 30 * time.Second

type hookedStore struct {
	Store
	hooks    []Hook
	inflight sync.WaitGroup
}

// WithHooks returns a store that runs hooks after every successful Set.
// Hooks run in the background so Set returns as soon as the value is stored.
// Hook failures are logged and never fail the write. Shutdown waits for
// pending hooks.
func WithHooks(store Store, hooks ...Hook) Store {
	if len(hooks) == 0 {
		return store
	}
	return &hookedStore{Store: store, hooks: hooks}
}

func (s *hookedStore) Set(ctx context.Context, key, value string) error {
	if err := s.Store.Set(ctx, key, value); err != nil {
		return err
	}
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
	s.inflight.Go(func() {
		defer cancel()
		s.runHooks(hookCtx, key, value)
	})
	return nil
}

func (s *hookedStore) runHooks(ctx context.Context, key, value string) {
	for _, hook := range s.hooks {
		if err := hook(ctx, key, value); err != nil {
			slog.Error("cache hook failed", "error", err, "cache_key", key)
		}
	}
}

// Shutdown waits for pending hooks, then releases the wrapped store when it
// holds resources.
func (s *hookedStore) Shutdown() error {
	s.inflight.Wait()
	if closer, ok := s.Store.(interface{ Shutdown() error }); ok {
		return closer.Shutdown()
	}
	return nil
}
