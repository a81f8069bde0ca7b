package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"media-resolver/internal/database"
	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediatypes"
	"media-resolver/internal/metrics"
)

const (
	// Number of assets to upsert per transaction
	batchSize = 500

	// Delay between batches to allow other database operations
	batchDelay = 10 * time.Millisecond
)

// Indexer walks the configured media roots and maintains the asset
// index. Every immediate subdirectory of a root becomes an album; the
// root itself is an album for loose files.
type Indexer struct {
	db      *database.Database
	fs      afero.Fs
	roots   []string
	workers int

	mu                   sync.Mutex
	isIndexing           bool
	lastIndexTime        time.Time
	initialIndexComplete bool
	initialIndexError    error
	startTime            time.Time

	assetsIndexed atomic.Int64
	albumsIndexed atomic.Int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Config tunes the indexer.
type Config struct {
	// Roots are the media directories to index.
	Roots []string

	// Workers bounds how many albums index concurrently.
	Workers int
}

// New creates an indexer over the given database and filesystem.
func New(db *database.Database, fs afero.Fs, cfg Config) *Indexer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Indexer{
		db:        db,
		fs:        fs,
		roots:     cfg.Roots,
		workers:   workers,
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}
}

// album is one directory scheduled for indexing.
type album struct {
	name      string
	path      string
	recursive bool
}

// Run performs a full index of all media roots. Albums index
// concurrently, bounded by the worker count; a failing album is logged
// and skipped. Only one run executes at a time; a second call while a
// run is active returns immediately.
func (idx *Indexer) Run(ctx context.Context) error {
	if !idx.tryStart() {
		logging.Info("Index already in progress, skipping...")
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	select {
	case <-idx.stopCh:
		cancel()
	default:
		go func() {
			select {
			case <-idx.stopCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	metrics.IndexerIsRunning.Set(1)
	metrics.IndexerRunsTotal.Inc()
	metrics.IndexerParallelWorkers.Set(float64(idx.workers))

	runStart := time.Now()
	var runErr error
	defer func() {
		metrics.IndexerIsRunning.Set(0)
		idx.finish(runErr)
	}()

	idx.assetsIndexed.Store(0)
	idx.albumsIndexed.Store(0)

	albums := idx.enumerateAlbums()
	logging.Info("Starting index of %d albums across %d roots (%d workers)",
		len(albums), len(idx.roots), idx.workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(idx.workers)
	for _, a := range albums {
		a := a
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := idx.indexAlbum(gctx, a, runStart); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logging.Error("Failed to index album %q: %v", a.path, err)
				metrics.IndexerErrors.Inc()
				return nil
			}
			idx.albumsIndexed.Add(1)
			metrics.IndexerAlbumsProcessed.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		runErr = err
		return err
	}

	idx.finalize(ctx, runStart)
	return nil
}

// Stop aborts any in-progress run between album batches and prevents
// new runs from indexing further work. Safe to call more than once.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(func() {
		close(idx.stopCh)
	})
}

// Refresh re-indexes the single album that contains dir. The filesystem
// watcher calls this on debounced change notifications so edits show up
// without waiting for a full run.
func (idx *Indexer) Refresh(ctx context.Context, dir string) error {
	a, ok := idx.albumFor(dir)
	if !ok {
		logging.Debug("change in %q is outside all media roots, ignoring", dir)
		return nil
	}

	logging.Info("Refreshing album %q", a.path)
	if err := idx.indexAlbum(ctx, a, time.Now()); err != nil {
		metrics.IndexerErrors.Inc()
		return fmt.Errorf("failed to refresh album %q: %w", a.path, err)
	}

	if stats, err := idx.db.CalculateStats(ctx); err == nil {
		idx.db.UpdateStats(stats)
	}
	return nil
}

// albumFor maps a changed directory to its owning album: the immediate
// subdirectory of a root on the dir's path, or the root itself.
func (idx *Indexer) albumFor(dir string) (album, bool) {
	clean := filepath.Clean(dir)
	for _, root := range idx.roots {
		root = filepath.Clean(root)
		if clean == root {
			return album{name: filepath.Base(root), path: root, recursive: false}, true
		}
		rel, err := filepath.Rel(root, clean)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		top := rel
		if i := strings.IndexRune(rel, filepath.Separator); i >= 0 {
			top = rel[:i]
		}
		return album{name: top, path: filepath.Join(root, top), recursive: true}, true
	}
	return album{}, false
}

// enumerateAlbums lists all albums under the media roots. An unreadable
// root is logged and skipped.
func (idx *Indexer) enumerateAlbums() []album {
	var albums []album
	for _, root := range idx.roots {
		root = filepath.Clean(root)
		entries, err := filesystem.ReadDir(idx.fs, root)
		if err != nil {
			logging.Warn("Skipping unreadable media root %q: %v", root, err)
			metrics.IndexerErrors.Inc()
			continue
		}

		// The root itself holds loose files not in any subdirectory.
		albums = append(albums, album{name: filepath.Base(root), path: root, recursive: false})

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			albums = append(albums, album{
				name:      entry.Name(),
				path:      filepath.Join(root, entry.Name()),
				recursive: true,
			})
		}
	}
	return albums
}

// indexAlbum upserts the album row, walks its files, and prunes rows
// whose files disappeared since the walk started.
func (idx *Indexer) indexAlbum(ctx context.Context, a album, runStart time.Time) error {
	albumID, err := idx.db.UpsertAlbum(ctx, a.name, a.path)
	if err != nil {
		return fmt.Errorf("failed to upsert album: %w", err)
	}

	var batch []*database.Asset
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := idx.writeBatch(batch); err != nil {
			return err
		}
		idx.assetsIndexed.Add(int64(len(batch)))
		metrics.IndexerAssetsProcessed.Add(float64(len(batch)))
		batch = batch[:0]
		time.Sleep(batchDelay)
		return nil
	}

	collect := func(path string, info os.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		asset, ok := idx.buildAsset(albumID, path, info)
		if !ok {
			return nil
		}
		batch = append(batch, asset)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	}

	if err := idx.walkAlbum(a, collect); err != nil {
		return err
	}
	if err := flush(); err != nil {
		return err
	}

	return idx.pruneAlbum(albumID, runStart)
}

// walkAlbum visits every candidate file in the album. Root albums only
// see their loose files; subdirectory albums are walked recursively.
// Hidden files and directories are skipped.
func (idx *Indexer) walkAlbum(a album, visit func(path string, info os.FileInfo) error) error {
	if !a.recursive {
		entries, err := filesystem.ReadDir(idx.fs, a.path)
		if err != nil {
			return err
		}
		for _, info := range entries {
			if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
				continue
			}
			if err := visit(filepath.Join(a.path, info.Name()), info); err != nil {
				return err
			}
		}
		return nil
	}

	return afero.Walk(idx.fs, a.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Warn("Error accessing %s: %v", path, err)
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		return visit(path, info)
	})
}

// buildAsset turns one file into an index row. Unsupported formats are
// skipped; an unreadable file is logged and skipped so the rest of the
// album still indexes.
func (idx *Indexer) buildAsset(albumID int64, path string, info os.FileInfo) (*database.Asset, bool) {
	mimeType, supported := mediatypes.Classify(path)
	if !supported {
		return nil, false
	}

	id, err := hashFile(idx.fs, path)
	if err != nil {
		logging.Warn("Failed to hash %s: %v", path, err)
		metrics.IndexerErrors.Inc()
		return nil, false
	}

	meta := extractMeta(idx.fs, path, info)
	return &database.Asset{
		ID:           id,
		AlbumID:      albumID,
		Title:        info.Name(),
		Path:         path,
		Kind:         mediatypes.KindOf(path).String(),
		MimeType:     mimeType,
		CreationTime: meta.CreationTime,
		Latitude:     meta.Latitude,
		Longitude:    meta.Longitude,
		Width:        meta.Width,
		Height:       meta.Height,
		Duration:     meta.Duration,
		Orientation:  meta.Orientation,
		SizeBytes:    info.Size(),
		IndexedAt:    time.Now(),
	}, true
}

// writeBatch upserts one batch of assets in a single transaction.
func (idx *Indexer) writeBatch(assets []*database.Asset) error {
	batch, err := idx.db.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	for _, a := range assets {
		if err := idx.db.UpsertAsset(batch.Tx, a); err != nil {
			logging.Warn("Error upserting asset %s: %v", a.Path, err)
		}
	}
	if err := idx.db.EndBatch(batch, nil); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// pruneAlbum deletes rows not touched by this run, i.e. files that no
// longer exist on disk.
func (idx *Indexer) pruneAlbum(albumID int64, runStart time.Time) error {
	batch, err := idx.db.BeginBatch()
	if err != nil {
		return fmt.Errorf("failed to begin prune: %w", err)
	}
	deleted, err := idx.db.DeleteAssetsNotSeen(batch.Tx, albumID, runStart)
	if err != nil {
		if endErr := idx.db.EndBatch(batch, err); endErr != nil {
			logging.Error("failed to roll back prune: %v", endErr)
		}
		return err
	}
	if err := idx.db.EndBatch(batch, nil); err != nil {
		return fmt.Errorf("failed to commit prune: %w", err)
	}
	if deleted > 0 {
		logging.Info("Pruned %d missing assets from album %d", deleted, albumID)
		metrics.IndexerAssetsPruned.Add(float64(deleted))
	}
	return nil
}

// finalize records run statistics after a successful pass.
func (idx *Indexer) finalize(ctx context.Context, runStart time.Time) {
	duration := time.Since(runStart)
	now := time.Now()

	idx.mu.Lock()
	idx.lastIndexTime = now
	idx.mu.Unlock()

	stats, err := idx.db.CalculateStats(ctx)
	if err != nil {
		logging.Error("Failed to calculate index stats: %v", err)
	} else {
		stats.LastIndexed = now
		stats.IndexDuration = duration.String()
		idx.db.UpdateStats(stats)
	}
	if err := idx.db.SetLastIndexed(ctx, now); err != nil {
		logging.Warn("Failed to persist last-indexed time: %v", err)
	}

	metrics.IndexerLastRunTimestamp.Set(float64(now.Unix()))
	metrics.IndexerLastRunDuration.Set(duration.Seconds())

	logging.Info("Index complete: %d assets in %d albums in %v",
		idx.assetsIndexed.Load(), idx.albumsIndexed.Load(), duration)
}

func (idx *Indexer) tryStart() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.isIndexing {
		return false
	}
	idx.isIndexing = true
	return true
}

func (idx *Indexer) finish(err error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.isIndexing = false
	idx.initialIndexComplete = true
	if err != nil {
		idx.initialIndexError = err
	}
}

// IsIndexing reports whether a run is currently in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.isIndexing
}

// LastIndexTime returns when the last run completed.
func (idx *Indexer) LastIndexTime() time.Time {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.lastIndexTime
}

// HealthStatus contains health check information.
type HealthStatus struct {
	Ready             bool      `json:"ready"`
	Indexing          bool      `json:"indexing"`
	StartTime         time.Time `json:"startTime"`
	Uptime            string    `json:"uptime"`
	LastIndexed       time.Time `json:"lastIndexed,omitempty"`
	InitialIndexError string    `json:"initialIndexError,omitempty"`
	AssetsIndexed     int64     `json:"assetsIndexed"`
	AlbumsIndexed     int64     `json:"albumsIndexed"`
}

// GetHealthStatus returns detailed health information.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	status := HealthStatus{
		Ready:         idx.initialIndexComplete,
		Indexing:      idx.isIndexing,
		StartTime:     idx.startTime,
		Uptime:        time.Since(idx.startTime).String(),
		LastIndexed:   idx.lastIndexTime,
		AssetsIndexed: idx.assetsIndexed.Load(),
		AlbumsIndexed: idx.albumsIndexed.Load(),
	}
	if idx.initialIndexError != nil {
		status.InitialIndexError = idx.initialIndexError.Error()
	}
	return status
}
