package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"media-resolver/internal/database"
	"media-resolver/internal/resolver"
)

// Device is the index-backed media source. It adapts the local SQLite
// index to the resolver's Source interface.
type Device struct {
	db *database.Database
}

// NewDevice creates a media source over the given index database.
func NewDevice(db *database.Database) *Device {
	return &Device{db: db}
}

// Albums enumerates all indexed albums.
func (d *Device) Albums(ctx context.Context) ([]resolver.Album, error) {
	albums, err := d.db.Albums(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}

	out := make([]resolver.Album, 0, len(albums))
	for _, a := range albums {
		out = append(out, resolver.Album{ID: a.ID, Name: a.Name, Path: a.Path})
	}
	return out, nil
}

// AlbumByPath looks up an album by its directory path.
func (d *Device) AlbumByPath(ctx context.Context, path string) (resolver.Album, error) {
	album, err := d.db.AlbumByPath(ctx, path)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return resolver.Album{}, resolver.ErrNotFound
		}
		return resolver.Album{}, err
	}
	return resolver.Album{ID: album.ID, Name: album.Name, Path: album.Path}, nil
}

// Assets enumerates an album's assets matching the query, newest first.
func (d *Device) Assets(ctx context.Context, albumID int64, q resolver.AssetQuery) ([]resolver.Handle, error) {
	assets, err := d.db.AssetsByAlbum(ctx, albumID, database.AssetFilter{
		Kind:        q.Kind,
		Start:       q.Start,
		End:         q.End,
		MaxDuration: q.MaxDuration,
		Limit:       q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate album %d: %w", albumID, err)
	}

	handles := make([]resolver.Handle, 0, len(assets))
	for _, a := range assets {
		handles = append(handles, toHandle(&a))
	}
	return handles, nil
}

// FilePath resolves an asset id to its live file path.
func (d *Device) FilePath(ctx context.Context, id string) (string, error) {
	path, err := d.db.AssetPath(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", resolver.ErrNotFound
		}
		return "", err
	}
	return path, nil
}

// FindMatch locates an asset whose cached metadata matches the hint.
func (d *Device) FindMatch(ctx context.Context, hint resolver.MatchHint) (string, error) {
	asset, err := d.db.FindAssetMatch(ctx, hint.Title, hint.SizeBytes, hint.CreationTime)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", resolver.ErrNotFound
		}
		return "", err
	}
	return asset.Path, nil
}

func toHandle(a *database.Asset) resolver.Handle {
	return resolver.Handle{
		ID:           a.ID,
		Title:        a.Title,
		AlbumPath:    filepath.Dir(a.Path),
		CreationTime: a.CreationTime,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
		Width:        a.Width,
		Height:       a.Height,
		Duration:     a.Duration,
		Orientation:  a.Orientation,
	}
}
