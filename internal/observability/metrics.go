// Package observability implements the observability surface (Component
// F): prometheus metrics over the Switch Controller's state, plus a
// resolve-duration histogram fed by the caller around each
// Resolver.Resolve call. The human-readable status line is
// switchctl.Controller.StatusLine, not part of this package.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FreezeTotal counts every Freeze emitted by init, poll, or the
	// resolver, across all series.
	FreezeTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_core_freeze_total",
		Help: "Total number of freeze outcomes emitted by the resolver and switch controller",
	})

	// SwitchTotal counts every committed market switch.
	SwitchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resolver_core_switch_total",
		Help: "Total number of committed market switches",
	})

	// LastReadyLeadSeconds tracks how early the last Prepare→Ready
	// promotion completed before the bucket boundary.
	LastReadyLeadSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resolver_core_last_ready_lead_seconds",
		Help: "Seconds before the bucket boundary at which the last candidate reached Ready",
	})

	// LastSwitchLatencyMs tracks commit latency from boundary to commit.
	LastSwitchLatencyMs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "resolver_core_last_switch_latency_ms",
		Help: "Milliseconds from bucket boundary to the last commit",
	})

	// ResolveDuration tracks wall-clock time spent inside Resolver.Resolve.
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "resolver_core_resolve_duration_seconds",
		Help:    "Time taken by Resolver.Resolve, including discovery and price-API round trips",
		Buckets: prometheus.DefBuckets,
	})

	// Phase reports the switch controller's current phase as a gauge
	// vector, one series per phase label, with exactly one set to 1.
	Phase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "resolver_core_switch_phase",
		Help: "Current switch controller phase (1 for the active phase, 0 otherwise)",
	}, []string{"phase"})
)

var knownPhases = []string{"stable", "prepare", "ready", "committing"}

// Stats is the subset of switchctl.Stats this package consumes, named
// locally to avoid an import cycle (switchctl never needs to import
// observability).
type Stats struct {
	FreezeCount          int
	SwitchCount          int
	LastReadyLeadSeconds float64
	LastSwitchLatencyMs  int64
}

// Recorder tracks previously-observed cumulative counts so monotonic
// prometheus counters can be driven from a periodically-resampled stats
// snapshot rather than incremented at the source.
type Recorder struct {
	lastFreezeCount int
	lastSwitchCount int
}

// NewRecorder creates a Recorder with zeroed baselines.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Sync reconciles the counters and gauges against a fresh stats snapshot.
func (r *Recorder) Sync(stats Stats) {
	if delta := stats.FreezeCount - r.lastFreezeCount; delta > 0 {
		FreezeTotal.Add(float64(delta))
		r.lastFreezeCount = stats.FreezeCount
	}
	if delta := stats.SwitchCount - r.lastSwitchCount; delta > 0 {
		SwitchTotal.Add(float64(delta))
		r.lastSwitchCount = stats.SwitchCount
	}
	LastReadyLeadSeconds.Set(stats.LastReadyLeadSeconds)
	LastSwitchLatencyMs.Set(float64(stats.LastSwitchLatencyMs))
}

// SyncPhase sets the phase gauge vector so exactly one phase reads 1.
func (r *Recorder) SyncPhase(phase string) {
	for _, p := range knownPhases {
		value := 0.0
		if p == phase {
			value = 1.0
		}
		Phase.WithLabelValues(p).Set(value)
	}
}

// RecordResolveDuration observes the elapsed time of a Resolver.Resolve
// call against the resolve-duration histogram.
func RecordResolveDuration(d time.Duration) {
	ResolveDuration.Observe(d.Seconds())
}
