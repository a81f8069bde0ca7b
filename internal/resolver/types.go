package resolver

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Source implementations when a lookup
// matches nothing.
var ErrNotFound = errors.New("resolver: not found")

// Query is the parsed search request. It is treated as immutable input;
// the engine never modifies it.
type Query struct {
	Terms         []string   `json:"terms"`
	OriginalQuery string     `json:"original_query"`
	DateRange     *DateRange `json:"date_range,omitempty"`
	MediaKind     string     `json:"media_type,omitempty"` // "photo", "video", or empty for both
	Directory     string     `json:"directory,omitempty"`
}

// DateRange is an inclusive creation-time window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Handle is a cached snapshot of an indexed asset's metadata. The engine
// holds the identity plus the fields it needs to filter, sort, and build
// candidate records; the authoritative copy lives in the media index.
type Handle struct {
	ID           string
	Title        string
	AlbumPath    string
	CreationTime time.Time
	Latitude     *float64
	Longitude    *float64
	Width        int
	Height       int
	Duration     float64 // seconds; 0 for photos
	Orientation  int
}

// Candidate is a fully resolved media item, ready for selection.
type Candidate struct {
	ID             string         `json:"id"`
	FileURI        string         `json:"file_uri"`
	MimeType       string         `json:"mime_type"`
	DeviceMetadata DeviceMetadata `json:"device_metadata"`
}

// DeviceMetadata carries the per-asset fields copied from the index
// snapshot plus the file size measured at resolution time.
type DeviceMetadata struct {
	CreationTime  time.Time `json:"creation_time"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	Duration      *float64  `json:"duration"`
	Orientation   int       `json:"orientation"`
}

// ValidationResult reports whether a previously recorded file URI still
// resolves, and where it resolves to now.
type ValidationResult struct {
	IsValid       bool   `json:"is_valid"`
	EffectiveURI  string `json:"effective_uri,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// Validation failure reasons.
const (
	FailureNotFound         = "not_found"
	FailurePermissionDenied = "permission_denied"
	FailureEmpty            = "empty"
	FailureUnsupported      = "unsupported"
)

// Album identifies one enumerable collection in the media index.
type Album struct {
	ID   int64
	Name string
	Path string
}

// AssetQuery narrows an album enumeration.
type AssetQuery struct {
	Kind        string    // "photo", "video", or empty
	Start       time.Time // zero means unbounded
	End         time.Time
	MaxDuration float64 // seconds; caps video length, 0 means unbounded
	Limit       int
}

// MatchHint describes a stale reference for recovery lookups. Zero-valued
// fields are ignored by the matcher.
type MatchHint struct {
	Title        string
	SizeBytes    int64
	CreationTime time.Time
}

// Source is the media-index capability the engine depends on. A
// device-backed implementation queries the local index; a no-op
// implementation reports everything as unavailable.
type Source interface {
	// Albums enumerates all known albums.
	Albums(ctx context.Context) ([]Album, error)

	// AlbumByPath looks up an album by its directory path, returning
	// ErrNotFound when no album matches.
	AlbumByPath(ctx context.Context, path string) (Album, error)

	// Assets enumerates an album's assets matching the query, ordered
	// newest-first by creation time.
	Assets(ctx context.Context, albumID int64, q AssetQuery) ([]Handle, error)

	// FilePath resolves an asset id to its live file path, returning
	// ErrNotFound when the asset is unknown.
	FilePath(ctx context.Context, id string) (string, error)

	// FindMatch locates an asset whose cached metadata matches the hint
	// and returns its file path, or ErrNotFound.
	FindMatch(ctx context.Context, hint MatchHint) (string, error)
}
