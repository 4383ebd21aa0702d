package matching

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	findCandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_find_candidates_total",
			Help: "Total number of candidate searches by query mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	findCandidatesDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matching_find_candidates_duration_seconds",
			Help:    "Time spent ranking candidates for one request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	candidatesScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scanned_total",
			Help: "Total number of pool profiles evaluated",
		},
	)

	candidatesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_rejected_total",
			Help: "Pool profiles dropped before scoring, by reason",
		},
		[]string{"reason"},
	)

	compatibilityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_compatibility_scores",
			Help:    "Distribution of compatibility scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	poolCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_pool_cache_requests_total",
			Help: "Candidate pool cache lookups by result",
		},
		[]string{"result"},
	)

	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "matching_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// Rejection reasons beyond the exclusion reasons.
const (
	rejectedPreference     = "preference"
	rejectedOverride       = "override"
	rejectedInvalidProfile = "invalid_profile"
)

func RecordCompatibilityScore(score float64) {
	compatibilityScores.Observe(score)
}

func recordFind(mode string, err error, elapsed time.Duration) {
	findCandidatesTotal.WithLabelValues(mode, outcomeLabel(err)).Inc()
	findCandidatesDuration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

func recordRejections(scanned int, rejected map[string]int) {
	candidatesScanned.Add(float64(scanned))
	for reason, n := range rejected {
		candidatesRejected.WithLabelValues(reason).Add(float64(n))
	}
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrDependencyUnavailable):
		return "dependency_unavailable"
	default:
		return "error"
	}
}
