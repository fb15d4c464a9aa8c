package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReadingsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sahool_readings_ingested_total",
		Help: "Total number of sensor readings accepted for processing",
	})

	InvalidReadingsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sahool_invalid_readings_dropped_total",
		Help: "Total number of readings rejected by validation",
	})

	OutliersDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sahool_outliers_detected_total",
		Help: "Total number of readings flagged as outliers during aggregation",
	})

	HealthEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sahool_health_evaluations_total",
		Help: "Total number of device health evaluations by resulting status",
	}, []string{"status"})

	BatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sahool_batch_processing_duration_seconds",
		Help:    "Duration of reading batch processing",
		Buckets: prometheus.DefBuckets,
	})
)
