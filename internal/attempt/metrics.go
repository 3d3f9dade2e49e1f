package attempt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizdeck_attempts_started_total",
		Help: "Number of quiz attempts opened.",
	})
	attemptsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizdeck_attempts_submitted_total",
		Help: "Number of quiz attempts graded and stored.",
	})
	answersRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizdeck_answers_recorded_total",
		Help: "Number of answer mutations across all attempts.",
	})
	scorePercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quizdeck_attempt_score_percent",
		Help:    "Score as a percentage of total questions at submission.",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)
