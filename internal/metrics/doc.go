// Package metrics provides Prometheus instrumentation for the media-resolver
// application.
//
// This package defines and exposes various metrics that can be scraped by
// Prometheus to monitor the health, performance, and behavior of the engine.
// All metrics are prefixed with "media_resolver_" to avoid naming collisions
// with other applications.
//
// Metric families are grouped by subsystem: HTTP request handling, the SQLite
// media index, the library indexer, the asset scanner, the batch metadata
// resolver, URI validation, filesystem operations, and the directory watcher.
//
// InitializeMetrics should be called once at startup to pre-populate all
// expected label combinations so every series is present from the first
// scrape. The Collector periodically refreshes library-size gauges from a
// StatsProvider, and NewFilesystemObserver bridges the filesystem package's
// Observer seam onto the collectors declared here.
package metrics
