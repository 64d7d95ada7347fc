package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	moviesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "moviedash_movies_loaded",
		Help: "Number of cleaned movie records in the loaded table",
	})

	pipelineRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedash_pipeline_runs_total",
		Help: "Total number of dashboard pipeline runs",
	}, []string{"status"})

	pipelineDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "moviedash_pipeline_duration_seconds",
		Help:    "Duration of dashboard pipeline runs in seconds",
		Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	fetchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "moviedash_fetch_duration_seconds",
		Help:    "Duration of dataset downloads in seconds",
		Buckets: prometheus.DefBuckets,
	})

	digestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedash_digests_total",
		Help: "Total number of digest deliveries",
	}, []string{"status"})

	botCommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedash_bot_commands_total",
		Help: "Total number of bot commands handled",
	}, []string{"command"})

	errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moviedash_errors_total",
		Help: "Total number of errors",
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(moviesLoaded)
	prometheus.MustRegister(pipelineRunsTotal)
	prometheus.MustRegister(pipelineDurationSeconds)
	prometheus.MustRegister(fetchDurationSeconds)
	prometheus.MustRegister(digestsTotal)
	prometheus.MustRegister(botCommandsTotal)
	prometheus.MustRegister(errorsTotal)
}

// SetMoviesLoaded updates the loaded movies gauge
func SetMoviesLoaded(count int) {
	moviesLoaded.Set(float64(count))
}

// RecordPipelineRun records one pipeline run with its outcome and duration
func RecordPipelineRun(status string, duration time.Duration) {
	pipelineRunsTotal.WithLabelValues(status).Inc()
	pipelineDurationSeconds.Observe(duration.Seconds())
}

// RecordFetchDuration records the duration of a dataset download
func RecordFetchDuration(duration time.Duration) {
	fetchDurationSeconds.Observe(duration.Seconds())
}

// RecordDigest records a digest delivery
func RecordDigest(status string) {
	digestsTotal.WithLabelValues(status).Inc()
}

// RecordCommand records a handled bot command
func RecordCommand(command string) {
	botCommandsTotal.WithLabelValues(command).Inc()
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
