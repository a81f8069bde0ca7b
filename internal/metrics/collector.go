package metrics

import (
	"time"

	"media-resolver/internal/logging"
)

// StatsProvider supplies index statistics for periodic collection.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current index statistics.
type Stats struct {
	TotalAssets int
	TotalPhotos int
	TotalVideos int
	TotalAlbums int
}

// Collector periodically collects and updates library gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	MediaAssetsTotal.WithLabelValues("photo").Set(float64(stats.TotalPhotos))
	MediaAssetsTotal.WithLabelValues("video").Set(float64(stats.TotalVideos))
	MediaAlbumsTotal.Set(float64(stats.TotalAlbums))

	logging.Debug("Metrics collected: assets=%d, photos=%d, videos=%d, albums=%d",
		stats.TotalAssets, stats.TotalPhotos, stats.TotalVideos, stats.TotalAlbums)
}
