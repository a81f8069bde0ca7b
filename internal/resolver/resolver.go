package resolver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediatypes"
	"media-resolver/internal/metrics"
)

// Default tuning parameters. All of these are overridable via Config.
const (
	DefaultBatchSize        = 5
	DefaultItemTimeout      = 3 * time.Second
	DefaultPageSize         = 100
	DefaultMaxVideoDuration = 15 * time.Minute
)

// Config tunes the resolution pipeline.
type Config struct {
	// BatchSize bounds peak concurrency during metadata resolution.
	BatchSize int

	// ItemTimeout bounds each individual item resolution.
	ItemTimeout time.Duration

	// PageSize caps the number of handles enumerated per album.
	PageSize int

	// MaxVideoDuration drops videos longer than this from scans.
	MaxVideoDuration time.Duration

	// Clock is swapped for a fake in tests. Nil means the real clock.
	Clock clockwork.Clock
}

// Service runs the resolution pipeline: scan, dedupe, term-filter,
// then batched metadata resolution. One instance is shared by all
// callers; each call's working set is local, so no locking is needed.
type Service struct {
	source Source
	fs     afero.Fs
	cfg    Config
	clock  clockwork.Clock
}

// New creates a resolution service over the given media source and
// filesystem. Zero-valued config fields take the package defaults.
func New(source Source, fs afero.Fs, cfg Config) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = DefaultItemTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxVideoDuration <= 0 {
		cfg.MaxVideoDuration = DefaultMaxVideoDuration
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{source: source, fs: fs, cfg: cfg, clock: clock}
}

// Resolve runs the full pipeline for one query. Per-album and per-item
// failures are absorbed; the returned list is the best available set of
// candidates, possibly empty. An error is returned only when the album
// listing itself fails or the context is cancelled.
func (s *Service) Resolve(ctx context.Context, q Query) ([]Candidate, error) {
	handles, err := s.scan(ctx, q)
	if err != nil {
		return nil, err
	}

	handles = dedupe(handles)
	handles = filterByTerms(handles, q.Terms, q.OriginalQuery)

	candidates := s.resolveCandidates(ctx, handles)
	logging.Debug("resolved %d candidates from %d handles", len(candidates), len(handles))
	return candidates, nil
}

// scan enumerates raw handles across the query's scope. Albums that fail
// to enumerate are skipped so one unreadable album never aborts the scan.
func (s *Service) scan(ctx context.Context, q Query) ([]Handle, error) {
	start := time.Now()

	albums, err := s.scopeAlbums(ctx, q.Directory)
	if err != nil {
		metrics.ScannerOperationsTotal.WithLabelValues("scan", "error").Inc()
		return nil, fmt.Errorf("failed to enumerate albums: %w", err)
	}

	aq := AssetQuery{
		Kind:        q.MediaKind,
		MaxDuration: s.cfg.MaxVideoDuration.Seconds(),
		Limit:       s.cfg.PageSize,
	}
	if q.DateRange != nil {
		aq.Start = q.DateRange.Start
		aq.End = q.DateRange.End
	}

	var handles []Handle
	for _, album := range albums {
		assets, err := s.source.Assets(ctx, album.ID, aq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.Warn("skipping album %q: %v", album.Name, err)
			metrics.ScannerAlbumErrors.Inc()
			continue
		}
		handles = append(handles, assets...)
	}

	metrics.ScannerOperationsTotal.WithLabelValues("scan", "success").Inc()
	metrics.ScannerScanDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())
	metrics.ScannerHandlesReturned.Observe(float64(len(handles)))
	return handles, nil
}

// scopeAlbums resolves the query's directory scope to a set of albums.
// An unknown directory falls back to the first available album rather
// than failing the query.
func (s *Service) scopeAlbums(ctx context.Context, directory string) ([]Album, error) {
	if directory != "" {
		album, err := s.source.AlbumByPath(ctx, directory)
		if err == nil {
			metrics.ScannerOperationsTotal.WithLabelValues("album_by_path", "success").Inc()
			return []Album{album}, nil
		}
		metrics.ScannerOperationsTotal.WithLabelValues("album_by_path", "error").Inc()
		logging.Warn("directory scope %q not found, falling back to first album", directory)
	}

	albums, err := s.source.Albums(ctx)
	if err != nil {
		metrics.ScannerOperationsTotal.WithLabelValues("albums", "error").Inc()
		return nil, err
	}
	metrics.ScannerOperationsTotal.WithLabelValues("albums", "success").Inc()

	if directory != "" {
		if len(albums) == 0 {
			return nil, nil
		}
		return albums[:1], nil
	}
	return albums, nil
}

// dedupe collapses duplicate ids from overlapping albums, keeping the
// first occurrence, then re-sorts newest-first. Ties on creation time
// break by id so output order is deterministic.
func dedupe(handles []Handle) []Handle {
	seen := make(map[string]bool, len(handles))
	unique := make([]Handle, 0, len(handles))
	for _, h := range handles {
		if seen[h.ID] {
			continue
		}
		seen[h.ID] = true
		unique = append(unique, h)
	}

	sort.Slice(unique, func(i, j int) bool {
		if !unique[i].CreationTime.Equal(unique[j].CreationTime) {
			return unique[i].CreationTime.After(unique[j].CreationTime)
		}
		return unique[i].ID < unique[j].ID
	})
	return unique
}

// filterByTerms keeps handles whose title contains any individual term
// or the full original query, case-insensitively. Empty terms means no
// filtering.
func filterByTerms(handles []Handle, terms []string, originalQuery string) []Handle {
	if len(terms) == 0 {
		return handles
	}

	matched := make([]Handle, 0, len(handles))
	for _, h := range handles {
		title := strings.ToLower(h.Title)
		if originalQuery != "" && strings.Contains(title, strings.ToLower(originalQuery)) {
			matched = append(matched, h)
			continue
		}
		for _, term := range terms {
			if term != "" && strings.Contains(title, strings.ToLower(term)) {
				matched = append(matched, h)
				break
			}
		}
	}
	return matched
}

// itemResult carries one item's outcome out of its resolution goroutine.
type itemResult struct {
	candidate *Candidate
	status    string
}

// resolveCandidates processes handles in fixed-size batches. Items
// within a batch resolve concurrently; batches run strictly one after
// another so peak concurrency never exceeds the batch size. A failed,
// timed-out, or panicking item is dropped from the output without
// affecting its batchmates.
func (s *Service) resolveCandidates(ctx context.Context, handles []Handle) []Candidate {
	candidates := make([]Candidate, 0, len(handles))

	for offset := 0; offset < len(handles); offset += s.cfg.BatchSize {
		end := offset + s.cfg.BatchSize
		if end > len(handles) {
			end = len(handles)
		}
		batch := handles[offset:end]
		metrics.ResolverBatchesTotal.Inc()

		results := make([]itemResult, len(batch))
		var wg sync.WaitGroup
		for i, h := range batch {
			wg.Add(1)
			go func(i int, h Handle) {
				defer wg.Done()
				results[i] = s.resolveWithTimeout(ctx, h)
			}(i, h)
		}
		wg.Wait()

		for _, r := range results {
			metrics.ResolverItemsTotal.WithLabelValues(r.status).Inc()
			if r.candidate != nil {
				candidates = append(candidates, *r.candidate)
			}
		}
	}

	return candidates
}

// resolveWithTimeout resolves one item, bounding it by the configured
// timeout and absorbing panics. On timeout the item's goroutine is
// abandoned; it holds no resources beyond its own stack.
func (s *Service) resolveWithTimeout(ctx context.Context, h Handle) itemResult {
	metrics.ResolverItemsInFlight.Inc()
	defer metrics.ResolverItemsInFlight.Dec()
	start := time.Now()
	defer func() {
		metrics.ResolverItemDuration.Observe(time.Since(start).Seconds())
	}()

	done := make(chan itemResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("panic resolving item %s: %v", h.ID, r)
				done <- itemResult{status: "panic"}
			}
		}()
		done <- s.resolveItem(ctx, h)
	}()

	select {
	case r := <-done:
		return r
	case <-s.clock.After(s.cfg.ItemTimeout):
		logging.Warn("item %s timed out after %v", h.ID, s.cfg.ItemTimeout)
		return itemResult{status: "timeout"}
	case <-ctx.Done():
		return itemResult{status: "dropped_error"}
	}
}

// resolveItem turns one handle into a candidate record, or reports why
// it was dropped. When the index cannot produce a live file path, a
// speculative path is synthesized from the album directory and title so
// the caller can still show a placeholder; its size is reported as 0.
func (s *Service) resolveItem(ctx context.Context, h Handle) itemResult {
	path, err := s.source.FilePath(ctx, h.ID)
	if err != nil {
		fallback := filepath.Join(h.AlbumPath, h.Title)
		mimeType, supported := mediatypes.Classify(fallback)
		if !supported {
			return itemResult{status: "dropped_unsupported"}
		}
		logging.Debug("item %s has no live path, using fallback %q", h.ID, fallback)
		return itemResult{
			candidate: s.newCandidate(h, fallback, mimeType, 0),
			status:    "fallback",
		}
	}

	mimeType, supported := mediatypes.Classify(path)
	if !supported {
		return itemResult{status: "dropped_unsupported"}
	}

	size, err := filesystem.Size(s.fs, path)
	if err != nil {
		logging.Debug("item %s unreadable at %q: %v", h.ID, path, err)
		return itemResult{status: "dropped_error"}
	}
	if size == 0 {
		return itemResult{status: "dropped_empty"}
	}

	return itemResult{
		candidate: s.newCandidate(h, path, mimeType, size),
		status:    "resolved",
	}
}

func (s *Service) newCandidate(h Handle, uri, mimeType string, size int64) *Candidate {
	var duration *float64
	if h.Duration > 0 {
		d := h.Duration
		duration = &d
	}
	return &Candidate{
		ID:       h.ID,
		FileURI:  uri,
		MimeType: mimeType,
		DeviceMetadata: DeviceMetadata{
			CreationTime:  h.CreationTime,
			Latitude:      h.Latitude,
			Longitude:     h.Longitude,
			Width:         h.Width,
			Height:        h.Height,
			FileSizeBytes: size,
			Duration:      duration,
			Orientation:   h.Orientation,
		},
	}
}
