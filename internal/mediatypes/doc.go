// Package mediatypes provides extension-based media format classification
// for the media resolver.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains only primitive
// types, fixed allow-lists, and pure functions.
//
// # Classification
//
// Classify maps a file path to a MIME type and a supported verdict:
//
//	mime, supported := mediatypes.Classify("/media/Camera/IMG_0001.jpg")
//	// "image/jpeg", true
//
// Unknown extensions classify as application/octet-stream with
// supported=false. Classification is pure and never fails.
//
// # Allow-lists
//
// Two fixed allow-lists define what the resolver considers media:
//
//   - images: jpg, jpeg, png, gif, bmp, webp, heic, heif, tiff
//   - videos: mp4, mov, avi, mkv, webm, m4v, 3gp, flv, wmv, mpg, mpeg
//
// The extension maps (ImageExtensions, VideoExtensions) can be used directly
// for validation or iteration:
//
//	if mediatypes.ImageExtensions[mediatypes.Ext(name)] {
//	    // supported image
//	}
//
// # Kinds
//
// KindOf buckets a path into FileKindPhoto, FileKindVideo, or
// FileKindUnknown. ParseKind converts the wire strings "photo" and "video"
// (empty meaning "any") used by query filters.
package mediatypes
