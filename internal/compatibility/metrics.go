package compatibility

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	approximationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compatibility_approximations_total",
			Help: "Total number of compatibility approximations",
		},
		[]string{"outcome"},
	)

	profileCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compatibility_profile_cache_hits_total",
			Help: "Total number of profile cache hits",
		},
	)

	syntheticProfilesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compatibility_synthetic_profiles_total",
			Help: "Total number of synthetic profiles generated",
		},
	)

	overallScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compatibility_overall_scores",
			Help:    "Distribution of overall compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	approximationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "compatibility_approximation_duration_seconds",
			Help: "Time spent per compatibility approximation",
		},
	)
)

func recordApproximation(outcome string, score int, duration time.Duration) {
	approximationsTotal.WithLabelValues(outcome).Inc()
	overallScores.Observe(float64(score))
	approximationDuration.Observe(duration.Seconds())
}

func recordCacheHit() {
	profileCacheHits.Inc()
}

func recordSyntheticProfile() {
	syntheticProfilesTotal.Inc()
}

// Snapshot is a point-in-time view of the process-lifetime counters.
type Snapshot struct {
	TotalApproximations int64         `json:"total_approximations"`
	CacheHits           int64         `json:"cache_hits"`
	TotalProcessingTime time.Duration `json:"total_processing_time_ns"`
	AverageLatency      time.Duration `json:"average_latency_ns"`
	CacheSize           int           `json:"cache_size"`
}

// Recorder tracks process-lifetime counters, reset only by an explicit
// Reset call. The prometheus metrics above are cumulative and unaffected.
type Recorder struct {
	mu                  sync.Mutex
	totalApproximations int64
	cacheHits           int64
	totalProcessingTime time.Duration
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) RecordApproximation(duration time.Duration) {
	r.mu.Lock()
	r.totalApproximations++
	r.totalProcessingTime += duration
	r.mu.Unlock()
}

func (r *Recorder) RecordCacheHit() {
	r.mu.Lock()
	r.cacheHits++
	r.mu.Unlock()
}

// Snapshot returns the current counters; cacheSize is supplied by the caller
// because the cache is owned by the loader.
func (r *Recorder) Snapshot(cacheSize int) Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		TotalApproximations: r.totalApproximations,
		CacheHits:           r.cacheHits,
		TotalProcessingTime: r.totalProcessingTime,
		CacheSize:           cacheSize,
	}
	if r.totalApproximations > 0 {
		snap.AverageLatency = r.totalProcessingTime / time.Duration(r.totalApproximations)
	}
	return snap
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.totalApproximations = 0
	r.cacheHits = 0
	r.totalProcessingTime = 0
	r.mu.Unlock()
}
