package database

import "time"

// Album is one indexed media directory: an immediate subdirectory of a
// configured media root, or the root itself for loose files.
type Album struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"createdAt"`
}

// Asset is one indexed media file. ID is the hex SHA-256 of the file
// content, so identical files reachable through multiple albums share an ID.
type Asset struct {
	ID           string    `json:"id"`
	AlbumID      int64     `json:"albumId"`
	Title        string    `json:"title"`
	Path         string    `json:"path"`
	Kind         string    `json:"kind"` // "photo" or "video"
	MimeType     string    `json:"mimeType"`
	CreationTime time.Time `json:"creationTime"`
	Latitude     *float64  `json:"latitude,omitempty"`
	Longitude    *float64  `json:"longitude,omitempty"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Duration     float64   `json:"duration"` // seconds, 0 for photos
	Orientation  int       `json:"orientation"`
	SizeBytes    int64     `json:"sizeBytes"`
	IndexedAt    time.Time `json:"indexedAt"`
}

// AssetFilter narrows an AssetsByAlbum query. Zero values mean "no
// constraint" except Limit, which callers should always set to keep
// latency predictable.
type AssetFilter struct {
	Kind        string    // "photo", "video", or empty for any
	Start       time.Time // inclusive lower bound on creation time
	End         time.Time // inclusive upper bound on creation time
	MaxDuration float64   // seconds; caps video duration when > 0
	Limit       int
}

// IndexStats summarizes the index contents for health and metrics.
type IndexStats struct {
	TotalAssets   int       `json:"totalAssets"`
	TotalPhotos   int       `json:"totalPhotos"`
	TotalVideos   int       `json:"totalVideos"`
	TotalAlbums   int       `json:"totalAlbums"`
	LastIndexed   time.Time `json:"lastIndexed"`
	IndexDuration string    `json:"indexDuration"`
}
