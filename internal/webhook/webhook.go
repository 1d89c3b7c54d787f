package webhook

import (
	"context"
	"time"

	"github.com/foxseedlab/matome/internal/cache"
)

const SummaryWebhookSchemaVersion = "1"

type SummaryWebhookPayload struct {
	SchemaVersion string    `json:"schema_version"`
	CacheKey      string    `json:"cache_key"`
	Summary       string    `json:"summary"`
	CachedAt      time.Time `json:"cached_at"`
}

type Sender interface {
	SendSummary(ctx context.Context, payload SummaryWebhookPayload) error
}

// CacheHook announces every stored summary to sender.
func CacheHook(sender Sender, now func() time.Time) cache.Hook {
	return func(ctx context.Context, key, value string) error {
		return sender.SendSummary(ctx, SummaryWebhookPayload{
			SchemaVersion: SummaryWebhookSchemaVersion,
			CacheKey:      key,
			Summary:       value,
			CachedAt:      now().UTC(),
		})
	}
}
