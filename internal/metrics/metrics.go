package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"outcome"},
	)

	DBRowsAffected = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_db_rows_affected",
			Help:    "Number of rows affected by write operations",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Indexer metrics
var (
	IndexerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_indexer_runs_total",
			Help: "Total number of indexer runs",
		},
	)

	IndexerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_indexer_last_run_timestamp",
			Help: "Timestamp of the last indexer run",
		},
	)

	IndexerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_indexer_last_run_duration_seconds",
			Help: "Duration of the last indexer run in seconds",
		},
	)

	IndexerAssetsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_indexer_assets_processed_total",
			Help: "Total number of assets processed by the indexer",
		},
	)

	IndexerAlbumsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_indexer_albums_processed_total",
			Help: "Total number of albums processed by the indexer",
		},
	)

	IndexerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_indexer_errors_total",
			Help: "Total number of indexer errors",
		},
	)

	IndexerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_indexer_running",
			Help: "Whether the indexer is currently running (1 = running, 0 = idle)",
		},
	)

	IndexerParallelWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_indexer_parallel_workers",
			Help: "Number of parallel walker workers configured",
		},
	)

	IndexerAssetsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_indexer_assets_pruned_total",
			Help: "Total number of stale assets pruned after index runs",
		},
	)
)

// Scanner metrics (candidate enumeration)
var (
	ScannerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_scanner_operations_total",
			Help: "Total number of scanner operations",
		},
		[]string{"operation", "status"},
	)

	ScannerScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_scanner_scan_duration_seconds",
			Help:    "Scanner operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	ScannerHandlesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_resolver_scanner_handles_returned",
			Help:    "Number of asset handles returned per scan",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	ScannerAlbumErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_scanner_album_errors_total",
			Help: "Total number of albums skipped due to enumeration failures",
		},
	)
)

// Resolver metrics (batch metadata resolution)
var (
	ResolverBatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_resolver_batches_total",
			Help: "Total number of resolution batches processed",
		},
	)

	ResolverItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_resolver_items_total",
			Help: "Total number of items processed by the batch resolver",
		},
		[]string{"status"},
	)

	ResolverItemDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_resolver_resolver_item_duration_seconds",
			Help:    "Per-item metadata resolution duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 3, 5},
		},
	)

	ResolverItemsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_resolver_items_in_flight",
			Help: "Number of item resolutions currently in flight",
		},
	)
)

// Validation metrics
var (
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_validations_total",
			Help: "Total number of URI validations by outcome",
		},
		[]string{"outcome"},
	)

	ValidationRecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_validation_recoveries_total",
			Help: "Total number of stale URI recovery attempts",
		},
		[]string{"status"},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_resolver_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_filesystem_operation_errors_total",
			Help: "Total number of filesystem operation errors",
		},
		[]string{"volume", "operation"},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_resolver_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	WatchedDirectories = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_watcher_watched_directories",
			Help: "Number of directories currently being watched",
		},
	)

	WatcherRefreshesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_resolver_watcher_refreshes_total",
			Help: "Total number of debounced refresh callbacks fired",
		},
	)
)

// Media library metrics
var (
	MediaAssetsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_resolver_media_assets_total",
			Help: "Total number of indexed assets by kind",
		},
		[]string{"kind"},
	)

	MediaAlbumsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_resolver_media_albums_total",
			Help: "Total number of indexed albums",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_resolver_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
