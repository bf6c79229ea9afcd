package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timelinedb_sweep_runs_total",
		Help: "Completed sweep runs by result (ok, aborted, unavailable).",
	}, []string{"result"})

	SweepDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timelinedb_sweep_deleted_total",
		Help: "Records deleted by sweeps, by store.",
	}, []string{"store"})

	SweepPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timelinedb_sweep_pages_total",
		Help: "Expired-key index pages fetched by sweeps.",
	})

	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timelinedb_sweep_duration_seconds",
		Help:    "Wall time of one sweep run over one instance.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
)
