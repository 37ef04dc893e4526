// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "geotagger"

var (
	guessesSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_submitted_total",
			Help:      "Guess submissions by outcome.",
		},
		[]string{"outcome"},
	)

	pointsDebitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_debited_total",
			Help:      "Points spent on accepted guesses.",
		},
	)

	guessErrorDistance = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "guess_error_distance_meters",
			Help:      "Error distance of accepted guesses.",
			// 100 m .. ~26 000 km
			Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
		},
	)

	activityRecordFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_record_failures_total",
			Help:      "Guess events the activity recorder failed to persist.",
		},
	)
)

// OutcomeAccepted labels successful submissions.
const OutcomeAccepted = "accepted"

// GuessAccepted records a committed submission.
func GuessAccepted(cost int, errorDistance float64) {
	guessesSubmittedTotal.WithLabelValues(OutcomeAccepted).Inc()
	pointsDebitedTotal.Add(float64(cost))
	guessErrorDistance.Observe(errorDistance)
}

// GuessRejected records a submission that ended with the given error code.
func GuessRejected(code string) {
	guessesSubmittedTotal.WithLabelValues(code).Inc()
}

// ActivityRecordFailed counts a dropped activity log write.
func ActivityRecordFailed() {
	activityRecordFailuresTotal.Inc()
}
