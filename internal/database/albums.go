package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertAlbum inserts or refreshes an album row by path and returns its ID.
func (d *Database) UpsertAlbum(ctx context.Context, name, path string) (int64, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_album", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO albums (name, path) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET name = excluded.name
	`, name, path)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert album %s: %w", path, err)
	}

	var id int64
	err = d.db.QueryRowContext(ctx, "SELECT id FROM albums WHERE path = ?", path).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to read back album id for %s: %w", path, err)
	}
	return id, nil
}

// Albums returns all known albums, oldest first.
func (d *Database) Albums(ctx context.Context) ([]Album, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("albums", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, path, created_at FROM albums ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	var albums []Album
	for rows.Next() {
		var a Album
		var createdAt int64
		if err = rows.Scan(&a.ID, &a.Name, &a.Path, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan album row: %w", err)
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		albums = append(albums, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return albums, nil
}

// AlbumByPath returns the album indexed at exactly the given path.
// Returns ErrNotFound when no album matches.
func (d *Database) AlbumByPath(ctx context.Context, path string) (*Album, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("album_by_path", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a Album
	var createdAt int64
	err = d.db.QueryRowContext(ctx, `
		SELECT id, name, path, created_at FROM albums WHERE path = ?
	`, path).Scan(&a.ID, &a.Name, &a.Path, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query album %s: %w", path, err)
	}
	a.CreatedAt = time.Unix(createdAt, 0)
	return &a, nil
}
