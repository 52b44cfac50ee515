package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crmd",
		Subsystem: "jobs",
		Name:      "runs_total",
		Help:      "Job runs by outcome (success, error, skipped).",
	}, []string{"job", "status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crmd",
		Subsystem: "jobs",
		Name:      "run_duration_seconds",
		Help:      "Job run duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
)
