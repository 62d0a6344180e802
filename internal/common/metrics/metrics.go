// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTriaged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_submissions_total",
			Help: "Total number of submissions triaged, by tier",
		},
		[]string{"tier"},
	)

	SubmissionsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_submissions_failed_total",
			Help: "Total number of submissions that failed processing",
		},
		[]string{"error_code"},
	)

	CheckScores = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_check_score",
			Help:    "Score distribution per check",
			Buckets: prometheus.LinearBuckets(0, 5, 7),
		},
		[]string{"check"},
	)

	CommentsPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_comments_posted_total",
			Help: "Report comments posted to the issue tracker",
		},
		[]string{"kind"},
	)
)
