package mediatypes

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FileKind categorizes a media file by its extension.
type FileKind int

const (
	// FileKindUnknown is a file outside both allow-lists
	FileKindUnknown FileKind = iota
	// FileKindPhoto is a supported image format
	FileKindPhoto
	// FileKindVideo is a supported video format
	FileKindVideo
)

// OctetStream is the MIME type reported for unsupported files.
const OctetStream = "application/octet-stream"

// ImageExtensions is the allow-list of supported image extensions.
// Keys are lowercase and include the leading dot.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".heic": true,
	".heif": true,
	".tiff": true,
}

// VideoExtensions is the allow-list of supported video extensions.
// Keys are lowercase and include the leading dot.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
	".3gp":  true,
	".flv":  true,
	".wmv":  true,
	".mpg":  true,
	".mpeg": true,
}

// MimeTypes maps supported extensions to their MIME types.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".heic": "image/heic",
	".heif": "image/heif",
	".tiff": "image/tiff",

	// Videos
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
	".flv":  "video/x-flv",
	".wmv":  "video/x-ms-wmv",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
}

// Ext returns the lowercased extension of path, including the leading dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Classify maps a file path to its MIME type and a supported verdict.
// Unknown extensions classify as application/octet-stream and unsupported.
// Classify never fails; it always returns a usable MIME type.
func Classify(path string) (mimeType string, supported bool) {
	ext := Ext(path)
	if mime, ok := MimeTypes[ext]; ok {
		return mime, true
	}
	return OctetStream, false
}

// KindOf returns the media kind of a file path based on its extension.
func KindOf(path string) FileKind {
	ext := Ext(path)
	switch {
	case ImageExtensions[ext]:
		return FileKindPhoto
	case VideoExtensions[ext]:
		return FileKindVideo
	default:
		return FileKindUnknown
	}
}

// IsSupported reports whether the file's extension is on either allow-list.
func IsSupported(path string) bool {
	ext := Ext(path)
	return ImageExtensions[ext] || VideoExtensions[ext]
}

// ParseKind converts a wire-format kind string ("photo", "video", or empty
// for "any") to a FileKind. Empty input returns FileKindUnknown with no
// error; unrecognized input returns an error.
func ParseKind(s string) (FileKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FileKindUnknown, nil
	case "photo", "image":
		return FileKindPhoto, nil
	case "video":
		return FileKindVideo, nil
	}
	return FileKindUnknown, fmt.Errorf("unrecognized media kind %q", s)
}

// String returns the wire representation of a FileKind.
func (k FileKind) String() string {
	switch k {
	case FileKindPhoto:
		return "photo"
	case FileKindVideo:
		return "video"
	default:
		return "unknown"
	}
}
