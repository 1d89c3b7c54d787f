package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foxseedlab/matome/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder_Counts(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObserveSummary(metrics.ModeStream, metrics.OutcomeSuccess, 2*time.Second)
	r.ObserveSummary(metrics.ModeStream, metrics.OutcomeSuccess, time.Second)
	r.ObserveSummary(metrics.ModeComplete, metrics.OutcomeUpstreamError, time.Second)
	r.CacheLookup(true)
	r.CacheLookup(false)
	r.CacheLookup(false)
	r.OversizedTranscript()

	if got := testutil.ToFloat64(r.summariesTotal.WithLabelValues(metrics.ModeStream, metrics.OutcomeSuccess)); got != 2 {
		t.Fatalf("unexpected stream success count: %v", got)
	}
	if got := testutil.ToFloat64(r.summariesTotal.WithLabelValues(metrics.ModeComplete, metrics.OutcomeUpstreamError)); got != 1 {
		t.Fatalf("unexpected upstream error count: %v", got)
	}
	if got := testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")); got != 2 {
		t.Fatalf("unexpected cache miss count: %v", got)
	}
	if got := testutil.ToFloat64(r.oversizedTranscript); got != 1 {
		t.Fatalf("unexpected oversized count: %v", got)
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	r := NewPrometheusRecorder()
	r.CacheLookup(true)

	server := httptest.NewServer(r.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("failed to scrape: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), `matome_cache_lookups_total{result="hit"} 1`) {
		t.Fatalf("expected cache lookup series in scrape output:\n%s", body)
	}
}

func TestNewPrometheusRecorder_IndependentRegistries(t *testing.T) {
	a := NewPrometheusRecorder()
	b := NewPrometheusRecorder()
	a.OversizedTranscript()
	if got := testutil.ToFloat64(b.oversizedTranscript); got != 0 {
		t.Fatalf("recorders must not share state, got %v", got)
	}
}
