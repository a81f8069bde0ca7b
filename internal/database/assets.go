package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"media-resolver/internal/metrics"
)

const assetColumns = `id, album_id, title, path, kind, mime_type, creation_time,
	latitude, longitude, width, height, duration, orientation, size_bytes, indexed_at`

// UpsertAsset inserts or replaces an asset row within a transaction.
// The (id, path) pair is the row identity: the same content reachable
// through two album paths keeps two rows that share an ID.
func (d *Database) UpsertAsset(tx *sql.Tx, a *Asset) error {
	query := `
	INSERT INTO assets (` + assetColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id, path) DO UPDATE SET
		album_id = excluded.album_id,
		title = excluded.title,
		kind = excluded.kind,
		mime_type = excluded.mime_type,
		creation_time = excluded.creation_time,
		latitude = excluded.latitude,
		longitude = excluded.longitude,
		width = excluded.width,
		height = excluded.height,
		duration = excluded.duration,
		orientation = excluded.orientation,
		size_bytes = excluded.size_bytes,
		indexed_at = excluded.indexed_at
	`

	// Background context: the transaction controls the operation's lifecycle.
	result, err := tx.ExecContext(context.Background(), query,
		a.ID,
		a.AlbumID,
		a.Title,
		a.Path,
		a.Kind,
		a.MimeType,
		a.CreationTime.Unix(),
		a.Latitude,
		a.Longitude,
		a.Width,
		a.Height,
		a.Duration,
		a.Orientation,
		a.SizeBytes,
		a.IndexedAt.Unix(),
	)
	if err == nil {
		if rows, _ := result.RowsAffected(); rows > 0 {
			metrics.DBRowsAffected.WithLabelValues("upsert_asset").Observe(float64(rows))
		}
	}
	return err
}

// scanAsset reads one asset row in assetColumns order.
func scanAsset(scan func(dest ...any) error) (*Asset, error) {
	var a Asset
	var creationTime, indexedAt int64
	err := scan(
		&a.ID, &a.AlbumID, &a.Title, &a.Path, &a.Kind, &a.MimeType,
		&creationTime, &a.Latitude, &a.Longitude, &a.Width, &a.Height,
		&a.Duration, &a.Orientation, &a.SizeBytes, &indexedAt,
	)
	if err != nil {
		return nil, err
	}
	a.CreationTime = time.Unix(creationTime, 0)
	a.IndexedAt = time.Unix(indexedAt, 0)
	return &a, nil
}

// AssetsByAlbum returns an album's assets matching the filter, ordered by
// creation time descending.
func (d *Database) AssetsByAlbum(ctx context.Context, albumID int64, filter AssetFilter) ([]Asset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("assets_by_album", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString("SELECT " + assetColumns + " FROM assets WHERE album_id = ?")
	args := []any{albumID}

	if filter.Kind != "" {
		sb.WriteString(" AND kind = ?")
		args = append(args, filter.Kind)
	}
	if !filter.Start.IsZero() {
		sb.WriteString(" AND creation_time >= ?")
		args = append(args, filter.Start.Unix())
	}
	if !filter.End.IsZero() {
		sb.WriteString(" AND creation_time <= ?")
		args = append(args, filter.End.Unix())
	}
	if filter.MaxDuration > 0 {
		sb.WriteString(" AND duration <= ?")
		args = append(args, filter.MaxDuration)
	}
	sb.WriteString(" ORDER BY creation_time DESC")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := d.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets for album %d: %w", albumID, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var assets []Asset
	for rows.Next() {
		var a *Asset
		a, err = scanAsset(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		assets = append(assets, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return assets, nil
}

// AssetByID returns one asset carrying the given content ID.
// When an ID appears under multiple paths the newest row wins.
func (d *Database) AssetByID(ctx context.Context, id string) (*Asset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("asset_by_id", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		"SELECT "+assetColumns+" FROM assets WHERE id = ? ORDER BY indexed_at DESC LIMIT 1", id)

	a, scanErr := scanAsset(row.Scan)
	if errors.Is(scanErr, sql.ErrNoRows) {
		err = scanErr
		return nil, fmt.Errorf("asset %s: %w", id, ErrNotFound)
	}
	if scanErr != nil {
		err = scanErr
		return nil, fmt.Errorf("failed to query asset %s: %w", id, scanErr)
	}
	return a, nil
}

// AssetPath returns the filesystem path of the asset with the given ID.
// Returns ErrNotFound when the ID is unknown.
func (d *Database) AssetPath(ctx context.Context, id string) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("asset_path", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var path string
	err = d.db.QueryRowContext(ctx,
		"SELECT path FROM assets WHERE id = ? ORDER BY indexed_at DESC LIMIT 1", id).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("asset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query asset path %s: %w", id, err)
	}
	return path, nil
}

// FindAssetMatch is the stale-URI recovery lookup: an exact title match
// first, falling back to a size plus creation-time match, newest first.
// Returns ErrNotFound when neither heuristic matches.
func (d *Database) FindAssetMatch(ctx context.Context, title string, sizeBytes int64, creation time.Time) (*Asset, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("find_asset_match", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if title != "" {
		row := d.db.QueryRowContext(ctx,
			"SELECT "+assetColumns+" FROM assets WHERE title = ? COLLATE NOCASE ORDER BY creation_time DESC LIMIT 1",
			title)
		a, scanErr := scanAsset(row.Scan)
		if scanErr == nil {
			return a, nil
		}
		if !errors.Is(scanErr, sql.ErrNoRows) {
			err = scanErr
			return nil, fmt.Errorf("failed to match asset by title %q: %w", title, scanErr)
		}
	}

	if sizeBytes > 0 && !creation.IsZero() {
		row := d.db.QueryRowContext(ctx,
			"SELECT "+assetColumns+" FROM assets WHERE size_bytes = ? AND creation_time = ? ORDER BY creation_time DESC LIMIT 1",
			sizeBytes, creation.Unix())
		a, scanErr := scanAsset(row.Scan)
		if scanErr == nil {
			return a, nil
		}
		if !errors.Is(scanErr, sql.ErrNoRows) {
			err = scanErr
			return nil, fmt.Errorf("failed to match asset by size/creation: %w", scanErr)
		}
	}

	err = sql.ErrNoRows
	return nil, ErrNotFound
}

// DeleteAssetsNotSeen prunes an album's rows whose indexed_at predates the
// given cutoff: files that disappeared between index runs. Must be called
// within a transaction.
func (d *Database) DeleteAssetsNotSeen(tx *sql.Tx, albumID int64, since time.Time) (int64, error) {
	result, err := tx.ExecContext(context.Background(),
		"DELETE FROM assets WHERE album_id = ? AND indexed_at < ?",
		albumID, since.Unix(),
	)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err == nil && rowsAffected > 0 {
		metrics.DBRowsAffected.WithLabelValues("delete_assets_not_seen").Observe(float64(rowsAffected))
	}
	return rowsAffected, err
}
