package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpframes_jobs_processed_total",
		Help: "Total number of jobs processed, by status",
	}, []string{"status"})

	JobStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sharpframes_job_stage_duration_seconds",
		Help:    "Duration of each pipeline stage",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesAnalyzedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpframes_frames_analyzed_total",
		Help: "Total number of frame samples scored across all jobs",
	})

	FramesExportedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sharpframes_frames_exported_total",
		Help: "Total number of frames written to export archives",
	})

	SharpnessVariance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sharpframes_sharpness_variance",
		Help:    "Distribution of Laplacian-variance scores",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sharpframes_active_workers",
		Help: "Number of currently active workers processing jobs",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sharpframes_retry_total",
		Help: "Total number of retries",
	}, []string{"attempt"})
)
