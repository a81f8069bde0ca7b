// Package indexer builds and maintains the media index. Each media
// root's immediate subdirectories become albums (the root itself is an
// album for loose files); albums are walked concurrently, bounded by a
// worker limit, each in its own batched transactions.
//
// Per file the indexer records a content hash (the asset's identity
// across albums), the MIME type, pixel dimensions, EXIF capture time
// and GPS coordinates for photos, and the mvhd creation time and
// duration for MP4/MOV videos. Files that cannot be read or parsed are
// skipped without failing the album; albums that cannot be read are
// skipped without failing the run.
//
// After each album pass, rows whose files disappeared since the run
// started are pruned.
package indexer
