package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Filesystem operation metrics (per volume × operation) ---
	volumes := []string{"media", "database", "unknown"}
	fsOps := []string{"stat", "open", "read", "readdir"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "upsert_album", "upsert_asset",
		"albums", "album_by_path", "assets_by_album", "asset_by_id", "asset_path",
		"find_asset_match", "delete_assets_not_seen", "calculate_stats",
		"get_metadata", "set_metadata"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, outcome := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(outcome)
	}

	for _, op := range []string{"upsert_asset", "delete_assets_not_seen"} {
		DBRowsAffected.WithLabelValues(op)
	}

	// --- Scanner operations ---
	for _, op := range []string{"scan", "albums", "album_by_path"} {
		ScannerOperationsTotal.WithLabelValues(op, "success")
		ScannerOperationsTotal.WithLabelValues(op, "error")
		ScannerScanDuration.WithLabelValues(op)
	}

	// --- Resolver item outcomes ---
	for _, status := range []string{"resolved", "fallback", "dropped_unsupported",
		"dropped_empty", "dropped_error", "timeout", "panic"} {
		ResolverItemsTotal.WithLabelValues(status)
	}

	// --- Validation outcomes ---
	for _, outcome := range []string{"valid", "recovered", "not_found",
		"permission_denied", "empty", "unsupported"} {
		ValidationsTotal.WithLabelValues(outcome)
	}
	for _, status := range []string{"attempted", "success", "failure"} {
		ValidationRecoveriesTotal.WithLabelValues(status)
	}

	// --- Watcher event types ---
	for _, et := range []string{"create", "write", "remove", "rename", "chmod", "unknown"} {
		WatcherEventsTotal.WithLabelValues(et)
	}

	// --- Media library gauges ---
	for _, kind := range []string{"photo", "video"} {
		MediaAssetsTotal.WithLabelValues(kind)
	}
}
