package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSubmission(t *testing.T) {
	accepted := testutil.ToFloat64(submissions.WithLabelValues("accepted"))
	rejected := testutil.ToFloat64(submissions.WithLabelValues("rejected"))
	errs := testutil.ToFloat64(validationErrors)

	ObserveSubmission(true, 0)
	ObserveSubmission(false, 3)

	assert.Equal(t, accepted+1, testutil.ToFloat64(submissions.WithLabelValues("accepted")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(submissions.WithLabelValues("rejected")))
	assert.Equal(t, errs+3, testutil.ToFloat64(validationErrors))
}

func TestObserveAggregation(t *testing.T) {
	ObserveAggregation(time.Now().Add(-time.Millisecond))
	assert.Equal(t, 1, testutil.CollectAndCount(aggregationSeconds, "survey_aggregation_seconds"))
}
