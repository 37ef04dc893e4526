package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestGuessCounters(t *testing.T) {
	acceptedBefore := testutil.ToFloat64(guessesSubmittedTotal.WithLabelValues(OutcomeAccepted))
	rejectedBefore := testutil.ToFloat64(guessesSubmittedTotal.WithLabelValues("INSUFFICIENT_POINTS"))
	pointsBefore := testutil.ToFloat64(pointsDebitedTotal)

	GuessAccepted(3, 1200)
	GuessAccepted(5, 80)
	GuessRejected("INSUFFICIENT_POINTS")

	assert.Equal(t, acceptedBefore+2, testutil.ToFloat64(guessesSubmittedTotal.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(guessesSubmittedTotal.WithLabelValues("INSUFFICIENT_POINTS")))
	assert.Equal(t, pointsBefore+8, testutil.ToFloat64(pointsDebitedTotal))
}

func TestActivityRecordFailed(t *testing.T) {
	before := testutil.ToFloat64(activityRecordFailuresTotal)
	ActivityRecordFailed()
	assert.Equal(t, before+1, testutil.ToFloat64(activityRecordFailuresTotal))
}
