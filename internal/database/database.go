package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-resolver/internal/logging"
	"media-resolver/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// ErrNotFound is returned when a lookup matches no rows. It wraps
// sql.ErrNoRows at the package boundary so callers don't import
// database/sql just to test for absence.
var ErrNotFound = errors.New("database: not found")

// Database is the device media index: a SQLite database of albums and
// assets that backs the device media source.
type Database struct {
	db      *sql.DB
	dbPath  string
	mu      sync.RWMutex
	stats   IndexStats
	statsMu sync.RWMutex
}

// New opens (creating if needed) the media index at dbPath.
// dbPath must be the full path to the database FILE (e.g.,
// "/database/media-index.db") and the parent directory must already exist
// and be writable; startup.LoadConfig validates this before calling.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Media index path: %s", dbPath)

	// WAL mode plus busy_timeout to prevent "database is locked" errors
	// under concurrent reads during an index run.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Media index initialized at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("initialize_schema", start, err) }()

	schema := `
	CREATE TABLE IF NOT EXISTS albums (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		path TEXT NOT NULL UNIQUE,
		created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
	);

	CREATE INDEX IF NOT EXISTS idx_albums_name ON albums(name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS assets (
		id TEXT NOT NULL,
		album_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		path TEXT NOT NULL,
		kind TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		creation_time INTEGER NOT NULL,
		latitude REAL,
		longitude REAL,
		width INTEGER NOT NULL DEFAULT 0,
		height INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		orientation INTEGER NOT NULL DEFAULT 1,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		indexed_at INTEGER NOT NULL,
		PRIMARY KEY (id, path),
		FOREIGN KEY (album_id) REFERENCES albums(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_assets_creation ON assets(creation_time DESC);
	CREATE INDEX IF NOT EXISTS idx_assets_album ON assets(album_id);
	CREATE INDEX IF NOT EXISTS idx_assets_title ON assets(title COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_assets_size_creation ON assets(size_bytes, creation_time);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	_, err = d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Batch is an open bulk-write transaction. The start time rides on the
// handle so concurrent batches record their own durations.
type Batch struct {
	Tx    *sql.Tx
	start time.Time
}

// BeginBatch starts a transaction for the indexer's bulk upserts.
// The caller is responsible for calling EndBatch when done.
func (d *Database) BeginBatch() (*Batch, error) {
	// Only protect transaction creation; EndBatch manages the lifetime.
	d.mu.Lock()
	start := time.Now()

	// Background context: the transaction's lifetime is managed by
	// EndBatch, not a timeout, and a deferred cancel would kill it the
	// moment this function returns.
	tx, err := d.db.BeginTx(context.Background(), nil)
	d.mu.Unlock()

	if err != nil {
		return nil, err
	}

	return &Batch{Tx: tx, start: start}, nil
}

// EndBatch commits or rolls back a batch transaction.
func (d *Database) EndBatch(b *Batch, err error) error {
	duration := time.Since(b.start).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		rbErr := b.Tx.Rollback()
		if rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return b.Tx.Commit()
}

// UpdateStats replaces the cached statistics.
func (d *Database) UpdateStats(stats IndexStats) {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	d.stats = stats
}

// GetStats returns the cached index statistics.
func (d *Database) GetStats() IndexStats {
	d.statsMu.RLock()
	defer d.statsMu.RUnlock()
	return d.stats
}

// CalculateStats queries current totals from the index.
func (d *Database) CalculateStats(ctx context.Context) (IndexStats, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("calculate_stats", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var stats IndexStats
	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN kind = 'photo' THEN 1 END),
			COUNT(CASE WHEN kind = 'video' THEN 1 END),
			(SELECT COUNT(*) FROM albums)
		FROM assets
	`).Scan(&stats.TotalAssets, &stats.TotalPhotos, &stats.TotalVideos, &stats.TotalAlbums)
	if err != nil {
		return IndexStats{}, fmt.Errorf("failed to calculate index stats: %w", err)
	}
	return stats, nil
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}
