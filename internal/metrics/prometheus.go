package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// Fetch metrics
	FetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubratings_fetch_attempts_total",
			Help: "Total number of ClubElo fetch attempts",
		},
		[]string{"endpoint", "status"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubratings_fetch_duration_seconds",
			Help:    "Duration of ClubElo fetch attempts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Import metrics
	RowsImportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubratings_rows_imported_total",
			Help: "Total number of rows successfully imported",
		},
		[]string{"job"},
	)

	RowsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubratings_rows_rejected_total",
			Help: "Total number of rows rejected during import",
		},
		[]string{"job", "reason"},
	)

	ImportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubratings_import_duration_seconds",
			Help:    "Duration of import jobs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubratings_imports_total",
			Help: "Total number of import jobs",
		},
		[]string{"job", "status"},
	)

	LastSuccessfulImport = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clubratings_last_successful_import_timestamp",
			Help: "Timestamp of last successful import per job",
		},
		[]string{"job"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubratings_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubratings_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubratings_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	ClubsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubratings_clubs_total",
			Help: "Total number of clubs in database",
		},
	)

	RatingsIngested = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubratings_rating_facts_total",
			Help: "Total number of rating facts in database",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubratings_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubratings_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordFetchAttempt records a single fetch attempt
func RecordFetchAttempt(endpoint, status string, duration float64) {
	FetchAttemptsTotal.WithLabelValues(endpoint, status).Inc()
	FetchDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordImport records a completed import job
func RecordImport(job, status string, duration float64) {
	ImportsTotal.WithLabelValues(job, status).Inc()
	ImportDuration.WithLabelValues(job).Observe(duration)

	if status == "success" {
		LastSuccessfulImport.WithLabelValues(job).SetToCurrentTime()
	}
}

// RecordRowImported records one successfully imported row
func RecordRowImported(job string) {
	RowsImportedTotal.WithLabelValues(job).Inc()
}

// RecordRowRejected records one rejected row
func RecordRowRejected(job, reason string) {
	RowsRejectedTotal.WithLabelValues(job, reason).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdateIngestionStats updates ingestion statistics
func UpdateIngestionStats(clubs, ratings int64) {
	ClubsIngested.Set(float64(clubs))
	RatingsIngested.Set(float64(ratings))
}
