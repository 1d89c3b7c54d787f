package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foxseedlab/matome/internal/webhook"
)

func TestSendSummary_EmptyWebhookURL(t *testing.T) {
	sender := NewHTTPSender("")
	if err := sender.SendSummary(context.Background(), webhook.SummaryWebhookPayload{CacheKey: "k"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestSendSummary_Success(t *testing.T) {
	var got webhook.SummaryWebhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cachedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sender := NewHTTPSender(server.URL)
	err := sender.SendSummary(context.Background(), webhook.SummaryWebhookPayload{
		SchemaVersion: webhook.SummaryWebhookSchemaVersion,
		CacheKey:      "abc_v1",
		Summary:       "- point",
		CachedAt:      cachedAt,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.CacheKey != "abc_v1" || got.Summary != "- point" || !got.CachedAt.Equal(cachedAt) {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.SchemaVersion != webhook.SummaryWebhookSchemaVersion {
		t.Fatalf("unexpected schema version: %s", got.SchemaVersion)
	}
}

func TestSendSummary_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.URL)
	if err := sender.SendSummary(context.Background(), webhook.SummaryWebhookPayload{CacheKey: "k"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
