// Package filesystem provides the engine's filesystem capability: afero-backed
// probe helpers (stat, size, open, readdir) with per-volume operation metrics,
// and a debounced fsnotify watcher that reports changed directories.
//
// Metrics are recorded through the Observer seam, implemented by the metrics
// package to avoid an import cycle. Probe errors pass through unwrapped so
// callers can match them with errors.Is against os.ErrNotExist and
// os.ErrPermission.
package filesystem
