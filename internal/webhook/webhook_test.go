package webhook

import (
	"context"
	"testing"
	"time"
)

type recordingSender struct {
	payloads []SummaryWebhookPayload
}

func (s *recordingSender) SendSummary(_ context.Context, payload SummaryWebhookPayload) error {
	s.payloads = append(s.payloads, payload)
	return nil
}

func TestCacheHook_BuildsPayload(t *testing.T) {
	sender := &recordingSender{}
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("JST", 9*60*60))
	hook := CacheHook(sender, func() time.Time { return at })

	if err := hook(context.Background(), "timestamp-abc_v1", "- point"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.payloads) != 1 {
		t.Fatalf("expected one payload, got %d", len(sender.payloads))
	}
	got := sender.payloads[0]
	if got.SchemaVersion != SummaryWebhookSchemaVersion || got.CacheKey != "timestamp-abc_v1" || got.Summary != "- point" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if !got.CachedAt.Equal(at) || got.CachedAt.Location() != time.UTC {
		t.Fatalf("expected cached_at in UTC, got %v", got.CachedAt)
	}
}
