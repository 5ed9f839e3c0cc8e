package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kona"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	fetchPages     *prom.CounterVec
	fetchRecords   *prom.CounterVec
	fetchDuration  prom.Histogram
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	cacheResults   *prom.CounterVec
	tsFallbacks    *prom.CounterVec
	rejected       *prom.CounterVec
	artifactWrites *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		fetchPages: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_pages_total",
			Help:      "Collection pages requested from the content source",
		}, []string{"collection"}),
		fetchRecords: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_records_total",
			Help:      "Records received from the content source",
		}, []string{"collection"}),
		fetchDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a full fetch-to-exhaustion loop",
			Buckets:   prom.DefBuckets,
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total pipeline run duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Pipeline runs by final status",
		}, []string{"outcome"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_results_total",
			Help:      "Content snapshot cache lookups by result",
		}, []string{"result"}),
		tsFallbacks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "timestamp_fallbacks_total",
			Help:      "Entries whose timestamp fell back to the build time",
		}, []string{"field"}),
		rejected: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_entries_total",
			Help:      "Entries dropped from the content graph",
		}, []string{"reason"}),
		artifactWrites: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_writes_total",
			Help:      "Artifact writes by artifact and result",
		}, []string{"artifact", "result"}),
	}
	reg.MustRegister(pr.fetchPages, pr.fetchRecords, pr.fetchDuration, pr.buildDuration,
		pr.buildOutcome, pr.cacheResults, pr.tsFallbacks, pr.rejected, pr.artifactWrites)
	return pr
}

// Handler exposes the recorder's registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PrometheusRecorder) IncFetchPage(collection string, records int) {
	p.fetchPages.WithLabelValues(collection).Inc()
	p.fetchRecords.WithLabelValues(collection).Add(float64(records))
}

func (p *PrometheusRecorder) ObserveFetchDuration(d time.Duration) {
	p.fetchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncCacheResult(result CacheResult) {
	p.cacheResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncTimestampFallback(field string) {
	p.tsFallbacks.WithLabelValues(field).Inc()
}

func (p *PrometheusRecorder) IncRejectedEntry(reason string) {
	p.rejected.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncArtifactWrite(artifact string, success bool) {
	result := "success"
	if !success {
		result = "failed"
	}
	p.artifactWrites.WithLabelValues(artifact, result).Inc()
}
