package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics. A nil *Registry is valid and
// records nothing, so one-shot commands skip metrics without branching.
type Registry struct {
	*prometheus.Registry

	runsTotal            *prometheus.CounterVec
	runDuration          prometheus.Histogram
	archiveBytes         prometheus.Gauge
	artifactsDeleted     *prometheus.CounterVec
	rotationErrors       prometheus.Counter
	lastSuccessTimestamp prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relic_runs_total",
				Help: "Total number of backup runs by outcome",
			},
			[]string{"status"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "relic_run_duration_seconds",
				Help:    "Backup run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),

		archiveBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "relic_archive_size_bytes",
				Help: "Size of the most recent archive",
			},
		),

		artifactsDeleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relic_artifacts_deleted_total",
				Help: "Artifacts removed by retention rotation",
			},
			[]string{"location"},
		),

		rotationErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "relic_rotation_errors_total",
				Help: "Per-artifact rotation failures",
			},
		),

		lastSuccessTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "relic_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run",
			},
		),
	}

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.archiveBytes)
	reg.MustRegister(r.artifactsDeleted)
	reg.MustRegister(r.rotationErrors)
	reg.MustRegister(r.lastSuccessTimestamp)

	return r
}

// RecordRun records one finished run.
func (r *Registry) RecordRun(status string, seconds float64) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(seconds)
}

// RecordArchive records the size of the freshly written archive.
func (r *Registry) RecordArchive(sizeBytes int64) {
	if r == nil {
		return
	}
	r.archiveBytes.Set(float64(sizeBytes))
}

// RecordRotation records the outcome of one rotation pass.
func (r *Registry) RecordRotation(deletedLocal, deletedRemote, errors int) {
	if r == nil {
		return
	}
	r.artifactsDeleted.WithLabelValues("local").Add(float64(deletedLocal))
	r.artifactsDeleted.WithLabelValues("remote").Add(float64(deletedRemote))
	r.rotationErrors.Add(float64(errors))
}

// MarkSuccess records the wall-clock time of a successful run.
func (r *Registry) MarkSuccess(unixSeconds float64) {
	if r == nil {
		return
	}
	r.lastSuccessTimestamp.Set(unixSeconds)
}
