package metrics

import "time"

// CacheResult enumerates cache gateway outcomes.
type CacheResult string

const (
	CacheHit   CacheResult = "hit"
	CacheMiss  CacheResult = "miss"
	CacheError CacheResult = "error"
)

// Recorder receives pipeline observations. NoopRecorder is the default when
// metrics are not configured.
type Recorder interface {
	IncFetchPage(collection string, records int)
	ObserveFetchDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // success|partial|failed
	IncCacheResult(result CacheResult)
	IncTimestampFallback(field string)
	IncRejectedEntry(reason string)
	IncArtifactWrite(artifact string, success bool)
}

type NoopRecorder struct{}

func (NoopRecorder) IncFetchPage(string, int)            {}
func (NoopRecorder) ObserveFetchDuration(time.Duration)  {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)  {}
func (NoopRecorder) IncBuildOutcome(string)              {}
func (NoopRecorder) IncCacheResult(CacheResult)          {}
func (NoopRecorder) IncTimestampFallback(string)         {}
func (NoopRecorder) IncRejectedEntry(string)             {}
func (NoopRecorder) IncArtifactWrite(string, bool)       {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
