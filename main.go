package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"media-resolver/internal/database"
	"media-resolver/internal/filesystem"
	"media-resolver/internal/handlers"
	"media-resolver/internal/indexer"
	"media-resolver/internal/logging"
	"media-resolver/internal/metrics"
	"media-resolver/internal/middleware"
	"media-resolver/internal/resolver"
	"media-resolver/internal/source"
	"media-resolver/internal/startup"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

func main() {
	startTime := time.Now()

	// Load .env if present; real environment wins over file values.
	if err := godotenv.Load(); err == nil {
		logging.Debug("Loaded environment from .env")
	}

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Volume labels for filesystem operation metrics
	volumes := map[string]string{"database": config.DatabaseDir}
	if len(config.MediaRoots) == 1 {
		volumes["media"] = config.MediaRoots[0]
	} else {
		for _, root := range config.MediaRoots {
			volumes["media:"+root] = root
		}
	}
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(volumes))

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())
		filesystem.SetObserver(metrics.NewFilesystemObserver())
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(context.Background(), config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	mediaFs := afero.NewOsFs()

	// Initialize indexer
	startup.LogIndexerInit(config.IndexWorkers, config.MediaRoots)
	idx := indexer.New(db, mediaFs, indexer.Config{
		Roots:   config.MediaRoots,
		Workers: config.IndexWorkers,
	})

	// Run the initial index in the background so the API comes up
	// immediately; readiness flips once the run completes.
	go func() {
		if err := idx.Run(context.Background()); err != nil {
			logging.Error("Initial index failed: %v", err)
		}
	}()
	startup.LogIndexerStarted()

	// Resolution engine over the freshly built index
	svc := resolver.New(source.NewDevice(db), mediaFs, resolver.Config{
		BatchSize:        config.ResolveBatchSize,
		ItemTimeout:      config.ResolveTimeout,
		PageSize:         config.ScanPageSize,
		MaxVideoDuration: config.MaxVideoDuration,
	})

	// Filesystem watcher keeps the index current between full runs
	var watcher *filesystem.Watcher
	startup.LogWatcherInit(config.WatchEnabled, config.WatchDebounce)
	if config.WatchEnabled {
		watcher = filesystem.NewWatcher(config.MediaRoots, filesystem.WatcherConfig{
			Debounce: config.WatchDebounce,
			OnChange: func(dir string) {
				if err := idx.Refresh(context.Background(), dir); err != nil {
					logging.Warn("Refresh of %s failed: %v", dir, err)
				}
			},
		})
	}

	// Periodic library gauges
	var collector *metrics.Collector
	if config.MetricsEnabled {
		collector = metrics.NewCollector(statsAdapter{db}, 30*time.Second)
		collector.Start()
	}

	// Initialize handlers
	h := handlers.New(svc, db, idx)

	// Setup router
	router := setupRouter(h)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Apply compression middleware
	handler = middleware.Compression(middleware.DefaultCompressionConfig())(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Separate metrics listener so scrapes bypass the API middleware chain
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:        ":" + config.MetricsPort,
			Handler:     metricsMux,
			ReadTimeout: 15 * time.Second,
		}
	}

	// Coordinate servers and watcher under one group; a termination
	// signal or any member failing cancels the rest.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if metricsSrv != nil {
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdown(srv, metricsSrv, watcher, idx, collector)
		return nil
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := g.Wait(); err != nil {
		startup.LogFatal("%v", err)
	}
	startup.LogShutdownComplete()
}

// statsAdapter bridges the database's index statistics to the metrics
// collector.
type statsAdapter struct {
	db *database.Database
}

func (s statsAdapter) GetStats() metrics.Stats {
	stats := s.db.GetStats()
	return metrics.Stats{
		TotalAssets: stats.TotalAssets,
		TotalPhotos: stats.TotalPhotos,
		TotalVideos: stats.TotalVideos,
		TotalAlbums: stats.TotalAlbums,
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/resolve", h.Resolve).Methods("POST")
	api.HandleFunc("/validate", h.Validate).Methods("POST")
	api.HandleFunc("/albums", h.GetAlbums).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/reindex", h.Reindex).Methods("POST")

	return r
}

func shutdown(srv, metricsSrv *http.Server, watcher *filesystem.Watcher, idx *indexer.Indexer, collector *metrics.Collector) {
	startup.LogShutdownInitiated("termination signal")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if watcher != nil {
		startup.LogShutdownStep("Stopping watcher")
		watcher.Stop()
		startup.LogShutdownStepComplete("Watcher stopped")
	}

	startup.LogShutdownStep("Stopping indexer")
	idx.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}
}
