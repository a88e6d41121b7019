// Package metrics exposes Prometheus instrumentation for races and leaderboard queries.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons recorded by RecordRaceRejected
const (
	ReasonMissingParameter = "missing_parameter"
	ReasonNotFound         = "not_found"
	ReasonTimingMismatch   = "timing_mismatch"
	ReasonStorage          = "storage"
)

// Recorder is the instrumentation surface used by services
type Recorder interface {
	RecordRaceStarted()
	RecordRaceFinished()
	RecordRaceCancelled()
	RecordRaceRejected(reason string)
	RecordTimingDrift(drift time.Duration)
	RecordLeaderboardQuery(failed bool)
}

// Collector is the Prometheus implementation of Recorder
type Collector struct {
	racesStarted   prometheus.Counter
	racesFinished  prometheus.Counter
	racesCancelled prometheus.Counter
	racesRejected  *prometheus.CounterVec
	timingDrift    prometheus.Histogram
	queries        prometheus.Counter
	queryFailures  prometheus.Counter
}

// Ensure Collector implements Recorder
var _ Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		racesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raceboard_races_started_total",
			Help: "Races started.",
		}),
		racesFinished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raceboard_races_finished_total",
			Help: "Races accepted onto the leaderboard.",
		}),
		racesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raceboard_races_cancelled_total",
			Help: "Races cancelled by the player.",
		}),
		racesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "raceboard_races_rejected_total",
			Help: "Finish or cancel requests rejected, by reason.",
		}, []string{"reason"}),
		timingDrift: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "raceboard_timing_drift_seconds",
			Help:    "Absolute difference between client and server race time.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raceboard_leaderboard_queries_total",
			Help: "Leaderboard queries served.",
		}),
		queryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "raceboard_leaderboard_query_failures_total",
			Help: "Leaderboard queries that failed in storage.",
		}),
	}

	reg.MustRegister(
		c.racesStarted,
		c.racesFinished,
		c.racesCancelled,
		c.racesRejected,
		c.timingDrift,
		c.queries,
		c.queryFailures,
	)

	return c
}

func (c *Collector) RecordRaceStarted() {
	c.racesStarted.Inc()
}

func (c *Collector) RecordRaceFinished() {
	c.racesFinished.Inc()
}

func (c *Collector) RecordRaceCancelled() {
	c.racesCancelled.Inc()
}

func (c *Collector) RecordRaceRejected(reason string) {
	c.racesRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordTimingDrift(drift time.Duration) {
	c.timingDrift.Observe(drift.Seconds())
}

// RecordLeaderboardQuery counts a query and, when failed, a failure
func (c *Collector) RecordLeaderboardQuery(failed bool) {
	c.queries.Inc()
	if failed {
		c.queryFailures.Inc()
	}
}

// Handler returns the Prometheus scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
