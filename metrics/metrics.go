package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "survey",
		Name:      "submissions_total",
		Help:      "Submissions received, by validation result.",
	}, []string{"result"})

	validationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "survey",
		Name:      "validation_errors_total",
		Help:      "Error messages produced while validating submissions.",
	})

	aggregationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "survey",
		Name:      "aggregation_seconds",
		Help:      "Time spent aggregating the responses of one survey.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})
)

// ObserveSubmission counts one submission and the errors that rejected it.
func ObserveSubmission(accepted bool, errCount int) {
	if accepted {
		submissions.WithLabelValues("accepted").Inc()
		return
	}
	submissions.WithLabelValues("rejected").Inc()
	validationErrors.Add(float64(errCount))
}

// ObserveAggregation records the time elapsed since start.
func ObserveAggregation(start time.Time) {
	aggregationSeconds.Observe(time.Since(start).Seconds())
}
