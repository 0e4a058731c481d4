package planner

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	planResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coach_plan_results_total",
			Help: "Fitness plans returned, by the tier that produced them",
		},
		[]string{"source"},
	)

	providerAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coach_plan_provider_duration_seconds",
			Help:    "Duration of plan provider attempts in seconds",
			Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "outcome"},
	)
)
