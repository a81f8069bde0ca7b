package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"media-resolver/internal/database"
	"media-resolver/internal/resolver"
)

// interface conformance
var (
	_ resolver.Source = (*Device)(nil)
	_ resolver.Source = (*Unsupported)(nil)
)

func newTestDevice(t *testing.T) (*Device, *database.Database) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "media-index.db")
	db, err := database.New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDevice(db), db
}

func seedAsset(t *testing.T, db *database.Database, a *database.Asset) {
	t.Helper()

	batch, err := db.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch: %v", err)
	}
	if err := db.UpsertAsset(batch.Tx, a); err != nil {
		t.Fatalf("UpsertAsset: %v", err)
	}
	if err := db.EndBatch(batch, nil); err != nil {
		t.Fatalf("EndBatch: %v", err)
	}
}

func TestDeviceSource(t *testing.T) {
	dev, db := newTestDevice(t)
	ctx := context.Background()

	albumID, err := db.UpsertAlbum(ctx, "Camera", "/media/Camera")
	if err != nil {
		t.Fatalf("UpsertAlbum: %v", err)
	}

	lat, lon := 48.8584, 2.2945
	creation := time.Date(2024, 6, 14, 19, 2, 11, 0, time.UTC)
	seedAsset(t, db, &database.Asset{
		ID:           "abc123",
		AlbumID:      albumID,
		Title:        "IMG_0042.jpg",
		Path:         "/media/Camera/IMG_0042.jpg",
		Kind:         "photo",
		MimeType:     "image/jpeg",
		CreationTime: creation,
		Latitude:     &lat,
		Longitude:    &lon,
		Width:        4032,
		Height:       3024,
		Orientation:  6,
		SizeBytes:    2871334,
		IndexedAt:    time.Now(),
	})

	t.Run("albums", func(t *testing.T) {
		albums, err := dev.Albums(ctx)
		if err != nil {
			t.Fatalf("Albums: %v", err)
		}
		if len(albums) != 1 || albums[0].Path != "/media/Camera" {
			t.Fatalf("albums = %+v, want one at /media/Camera", albums)
		}
	})

	t.Run("album by path", func(t *testing.T) {
		album, err := dev.AlbumByPath(ctx, "/media/Camera")
		if err != nil {
			t.Fatalf("AlbumByPath: %v", err)
		}
		if album.ID != albumID {
			t.Errorf("album id = %d, want %d", album.ID, albumID)
		}

		if _, err := dev.AlbumByPath(ctx, "/media/Nope"); !errors.Is(err, resolver.ErrNotFound) {
			t.Errorf("AlbumByPath(missing) error = %v, want resolver.ErrNotFound", err)
		}
	})

	t.Run("assets carry snapshot fields", func(t *testing.T) {
		handles, err := dev.Assets(ctx, albumID, resolver.AssetQuery{Limit: 10})
		if err != nil {
			t.Fatalf("Assets: %v", err)
		}
		if len(handles) != 1 {
			t.Fatalf("got %d handles, want 1", len(handles))
		}

		h := handles[0]
		if h.ID != "abc123" || h.Title != "IMG_0042.jpg" {
			t.Errorf("handle identity = %q/%q", h.ID, h.Title)
		}
		if h.AlbumPath != "/media/Camera" {
			t.Errorf("album path = %q, want /media/Camera", h.AlbumPath)
		}
		if !h.CreationTime.Equal(creation) {
			t.Errorf("creation time = %v, want %v", h.CreationTime, creation)
		}
		if h.Latitude == nil || *h.Latitude != lat {
			t.Errorf("latitude = %v, want %v", h.Latitude, lat)
		}
		if h.Width != 4032 || h.Height != 3024 || h.Orientation != 6 {
			t.Errorf("dimensions = %dx%d orientation %d", h.Width, h.Height, h.Orientation)
		}
	})

	t.Run("file path", func(t *testing.T) {
		path, err := dev.FilePath(ctx, "abc123")
		if err != nil {
			t.Fatalf("FilePath: %v", err)
		}
		if path != "/media/Camera/IMG_0042.jpg" {
			t.Errorf("path = %q", path)
		}

		if _, err := dev.FilePath(ctx, "missing"); !errors.Is(err, resolver.ErrNotFound) {
			t.Errorf("FilePath(missing) error = %v, want resolver.ErrNotFound", err)
		}
	})

	t.Run("find match", func(t *testing.T) {
		path, err := dev.FindMatch(ctx, resolver.MatchHint{Title: "IMG_0042.jpg"})
		if err != nil {
			t.Fatalf("FindMatch: %v", err)
		}
		if path != "/media/Camera/IMG_0042.jpg" {
			t.Errorf("matched path = %q", path)
		}

		_, err = dev.FindMatch(ctx, resolver.MatchHint{Title: "nope.jpg"})
		if !errors.Is(err, resolver.ErrNotFound) {
			t.Errorf("FindMatch(miss) error = %v, want resolver.ErrNotFound", err)
		}
	})
}

func TestUnsupportedSource(t *testing.T) {
	src := NewUnsupported()
	ctx := context.Background()

	albums, err := src.Albums(ctx)
	if err != nil || len(albums) != 0 {
		t.Errorf("Albums = %v, %v; want empty, nil", albums, err)
	}

	if _, err := src.FilePath(ctx, "any"); !errors.Is(err, resolver.ErrNotFound) {
		t.Errorf("FilePath error = %v, want resolver.ErrNotFound", err)
	}
	if _, err := src.FindMatch(ctx, resolver.MatchHint{Title: "x"}); !errors.Is(err, resolver.ErrNotFound) {
		t.Errorf("FindMatch error = %v, want resolver.ErrNotFound", err)
	}
	if _, err := src.AlbumByPath(ctx, "/media"); !errors.Is(err, resolver.ErrNotFound) {
		t.Errorf("AlbumByPath error = %v, want resolver.ErrNotFound", err)
	}
}
