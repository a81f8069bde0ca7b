package metrics

import "media-resolver/internal/filesystem"

// filesystemObserver implements filesystem.Observer using the Prometheus
// metrics declared in this package.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer that records filesystem and
// watcher metrics into the Prometheus collectors declared in metrics.go.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveOperation(volume, operation string, durationSeconds float64, err error) {
	FilesystemOperationDuration.WithLabelValues(volume, operation).Observe(durationSeconds)
	if err != nil {
		FilesystemOperationErrors.WithLabelValues(volume, operation).Inc()
	}
}

func (o *filesystemObserver) ObserveWatcherEvent(eventType string) {
	WatcherEventsTotal.WithLabelValues(eventType).Inc()
}

func (o *filesystemObserver) ObserveWatcherError() {
	WatcherErrors.Inc()
}

func (o *filesystemObserver) ObserveWatcherRefresh() {
	WatcherRefreshesTotal.Inc()
}

func (o *filesystemObserver) SetWatchedDirectories(n int) {
	WatchedDirectories.Set(float64(n))
}
