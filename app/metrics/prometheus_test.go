package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncFetchPage("articles", 3)
	pr.IncFetchPage("articles", 0)
	pr.ObserveFetchDuration(120 * time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome("success")
	pr.IncCacheResult(CacheHit)
	pr.IncCacheResult(CacheMiss)
	pr.IncTimestampFallback("published_at")
	pr.IncRejectedEntry("unclassifiable")
	pr.IncArtifactWrite("entries", true)
	pr.IncArtifactWrite("tags", false)

	if got := testutil.ToFloat64(pr.fetchPages.WithLabelValues("articles")); got != 2 {
		t.Errorf("Expected 2 article pages, got %v", got)
	}
	if got := testutil.ToFloat64(pr.fetchRecords.WithLabelValues("articles")); got != 3 {
		t.Errorf("Expected 3 article records, got %v", got)
	}
	if got := testutil.ToFloat64(pr.artifactWrites.WithLabelValues("tags", "failed")); got != 1 {
		t.Errorf("Expected 1 failed tags write, got %v", got)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestPrometheusHandler(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncBuildOutcome("failed")

	rec := httptest.NewRecorder()
	pr.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `kona_build_outcomes_total{outcome="failed"} 1`) {
		t.Errorf("Expected build outcome metric in output, got:\n%s", rec.Body.String())
	}
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopRecorder); !ok {
		t.Error("Expected NoopRecorder for nil recorder")
	}
	pr := NewPrometheusRecorder(nil)
	if OrNoop(pr) != Recorder(pr) {
		t.Error("Expected recorder to be returned unchanged")
	}
}
