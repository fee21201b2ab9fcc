package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the reconciliation service.
type Metrics struct {
	RecordsFetched prometheus.Counter
	UpdatesPlanned prometheus.Counter
	UpdatesSaved   prometheus.Counter
	BatchesSaved   prometheus.Counter
	WriteErrors    prometheus.Counter
	SweepDuration  prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RecordsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "epicsync_records_fetched_total",
			Help: "Records fetched from the record store",
		}),
		UpdatesPlanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "epicsync_updates_planned_total",
			Help: "Update documents produced by the reconciliation engine",
		}),
		UpdatesSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "epicsync_updates_saved_total",
			Help: "Update documents accepted by the record store",
		}),
		BatchesSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "epicsync_batches_saved_total",
			Help: "Batch save calls issued to the record store",
		}),
		WriteErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "epicsync_write_errors_total",
			Help: "Batch save calls that failed or reported record errors",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "epicsync_sweep_duration_seconds",
			Help:    "Wall-clock duration of full project sweeps",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
