package metrics

import (
	"net/http"
	"time"

	"github.com/foxseedlab/matome/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matome"

// PrometheusRecorder keeps its own registry so several instances can coexist in tests.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	summariesTotal      *prometheus.CounterVec
	summaryDuration     *prometheus.HistogramVec
	cacheLookups        *prometheus.CounterVec
	oversizedTranscript prometheus.Counter
}

func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		summariesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Total number of summary requests sent to the completion provider",
		}, []string{"mode", "outcome"}),
		summaryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_duration_seconds",
			Help:      "Time from request to the last delta of a summary",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"mode"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of summary cache lookups",
		}, []string{"result"}),
		oversizedTranscript: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversized_transcripts_total",
			Help:      "Transcripts whose first fragment alone exceeded the byte budget",
		}),
	}
}

var _ metrics.Recorder = (*PrometheusRecorder)(nil)

func (r *PrometheusRecorder) ObserveSummary(mode, outcome string, elapsed time.Duration) {
	r.summariesTotal.WithLabelValues(mode, outcome).Inc()
	r.summaryDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *PrometheusRecorder) OversizedTranscript() {
	r.oversizedTranscript.Inc()
}

func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
