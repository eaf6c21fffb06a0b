package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// DrawsNormalized counts raw records accepted by the normalizer
	DrawsNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_draws_normalized_total",
			Help: "Total number of raw draw records accepted by the normalizer",
		},
		[]string{"lottery"},
	)

	// DrawsSkipped counts malformed raw records dropped by the normalizer
	DrawsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_draws_skipped_total",
			Help: "Total number of malformed draw records dropped",
		},
		[]string{"lottery"},
	)

	// SnapshotsWritten counts feature snapshots committed to the store
	SnapshotsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_snapshots_written_total",
			Help: "Total number of feature snapshots written",
		},
		[]string{"lottery", "mode"}, // mode: rebuild, incremental
	)

	// HistoryAppends counts appearance-log entries written
	HistoryAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_history_appends_total",
			Help: "Total number of appearance log entries written",
		},
		[]string{"lottery", "kind"}, // kind: number, combo
	)

	// RunDuration measures end-to-end engine run duration
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lotteryd_run_duration_seconds",
			Help:    "Engine run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~400s
		},
		[]string{"lottery", "mode", "status"},
	)

	// LastDrawIndex tracks the index of the last committed snapshot
	LastDrawIndex = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lotteryd_last_draw_index",
			Help: "Index of the last committed feature snapshot",
		},
		[]string{"lottery"},
	)

	// ScrapeRequests counts upstream fetch attempts
	ScrapeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_scrape_requests_total",
			Help: "Total number of upstream draw fetch requests",
		},
		[]string{"lottery", "status"}, // status: success, error
	)

	// ScrapeDrawsSaved counts raw draws upserted after a fetch
	ScrapeDrawsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_scrape_draws_saved_total",
			Help: "Total number of raw draws saved from upstream fetches",
		},
		[]string{"lottery"},
	)

	// TasksEnqueued counts queued background tasks
	TasksEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_tasks_enqueued_total",
			Help: "Total number of background tasks enqueued",
		},
		[]string{"type", "trigger"}, // trigger: schedule, api, manual
	)

	// TasksTotal counts processed background tasks
	TasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_tasks_total",
			Help: "Total number of background tasks processed",
		},
		[]string{"type", "status"}, // status: success, failed
	)

	// TaskDuration measures background task execution duration
	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lotteryd_task_duration_seconds",
			Help:    "Background task execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
		[]string{"type", "status"},
	)

	// SchedulerActive indicates whether this instance holds scheduler leadership
	SchedulerActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lotteryd_scheduler_active",
			Help: "Whether this instance is the active scheduler (1=leader, 0=follower)",
		},
	)

	// StoreOperations counts document store operations
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "status"}, // operation: upsert, append, read
	)

	// ErrorsTotal counts errors by component
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotteryd_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordDrawNormalized records an accepted raw record.
func RecordDrawNormalized(lottery string) {
	DrawsNormalized.WithLabelValues(lottery).Inc()
}

// RecordDrawSkipped records a dropped malformed record.
func RecordDrawSkipped(lottery string) {
	DrawsSkipped.WithLabelValues(lottery).Inc()
}

// RecordSnapshotWritten records a committed snapshot and advances the
// position gauge.
func RecordSnapshotWritten(lottery, mode string, drawIndex int) {
	SnapshotsWritten.WithLabelValues(lottery, mode).Inc()
	LastDrawIndex.WithLabelValues(lottery).Set(float64(drawIndex))
}

// RecordHistoryAppends records appearance-log writes.
func RecordHistoryAppends(lottery, kind string, count int) {
	HistoryAppends.WithLabelValues(lottery, kind).Add(float64(count))
}

// RecordRun records a completed engine run.
func RecordRun(lottery, mode, status string, seconds float64) {
	RunDuration.WithLabelValues(lottery, mode, status).Observe(seconds)
}

// RecordScrape records an upstream fetch attempt.
func RecordScrape(lottery, status string) {
	ScrapeRequests.WithLabelValues(lottery, status).Inc()
}

// RecordScrapeDrawsSaved records raw draws persisted after a fetch.
func RecordScrapeDrawsSaved(lottery string, count int) {
	ScrapeDrawsSaved.WithLabelValues(lottery).Add(float64(count))
}

// RecordTaskEnqueued records a queued task.
func RecordTaskEnqueued(taskType, trigger string) {
	TasksEnqueued.WithLabelValues(taskType, trigger).Inc()
}

// RecordTaskComplete records a processed task.
func RecordTaskComplete(taskType, status string, seconds float64) {
	TasksTotal.WithLabelValues(taskType, status).Inc()
	TaskDuration.WithLabelValues(taskType, status).Observe(seconds)
}

// RecordStoreOperation records a document store operation.
func RecordStoreOperation(operation, status string) {
	StoreOperations.WithLabelValues(operation, status).Inc()
}

// RecordError records an error.
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
