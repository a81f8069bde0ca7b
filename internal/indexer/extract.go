package indexer

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"image"
	"io"
	"os"
	"time"

	// Register decoders for dimension probing.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"

	"media-resolver/internal/filesystem"
	"media-resolver/internal/logging"
	"media-resolver/internal/mediatypes"
)

// exifTimeLayout is the timestamp format used by EXIF date tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// assetMeta is the metadata extracted from one media file.
type assetMeta struct {
	CreationTime time.Time
	Latitude     *float64
	Longitude    *float64
	Width        int
	Height       int
	Duration     float64
	Orientation  int
}

// hashFile returns the hex SHA-256 of a file's content. The hash is the
// asset's identity: the same bytes under two paths share one id.
func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := filesystem.Open(fs, path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// extractMeta reads kind-specific metadata from a media file. Extraction
// failures are soft: fields that cannot be read stay zero and the
// creation time falls back to the file's modification time.
func extractMeta(fs afero.Fs, path string, info os.FileInfo) assetMeta {
	meta := assetMeta{CreationTime: info.ModTime().UTC(), Orientation: 1}

	switch mediatypes.KindOf(path) {
	case mediatypes.FileKindPhoto:
		extractPhotoMeta(fs, path, &meta)
	case mediatypes.FileKindVideo:
		extractVideoMeta(fs, path, info.Size(), &meta)
	}

	return meta
}

func extractPhotoMeta(fs afero.Fs, path string, meta *assetMeta) {
	f, err := filesystem.Open(fs, path)
	if err != nil {
		return
	}
	defer f.Close()

	if x, err := exif.Decode(f); err == nil {
		if t, ok := exifCreationTime(x); ok {
			meta.CreationTime = t
		}
		if lat, lon, err := x.LatLong(); err == nil {
			meta.Latitude = &lat
			meta.Longitude = &lon
		}
		if tag, err := x.Get(exif.Orientation); err == nil {
			if o, err := tag.Int(0); err == nil && o >= 1 && o <= 8 {
				meta.Orientation = o
			}
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return
	}
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	} else {
		logging.Debug("could not decode dimensions for %s: %v", path, err)
	}
}

// exifCreationTime reads the capture timestamp, preferring the tags
// closest to the moment the shutter fired: DateTimeOriginal, then
// DateTimeDigitized, then DateTime.
func exifCreationTime(x *exif.Exif) (time.Time, bool) {
	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		if t, err := time.Parse(exifTimeLayout, s); err == nil && t.Year() > 1900 {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// mp4Epoch is the offset in seconds between the QuickTime epoch
// (1904-01-01) and the Unix epoch.
const mp4Epoch = 2082844800

func extractVideoMeta(fs afero.Fs, path string, fileSize int64, meta *assetMeta) {
	f, err := filesystem.Open(fs, path)
	if err != nil {
		return
	}
	defer f.Close()

	creation, duration, ok := parseMvhd(f, fileSize)
	if !ok {
		logging.Debug("no mvhd atom in %s", path)
		return
	}
	if !creation.IsZero() {
		meta.CreationTime = creation
	}
	meta.Duration = duration
}

// parseMvhd walks the MP4/MOV atom tree to the moov/mvhd header and
// reads the movie's creation time and duration. The moov atom may sit
// at the end of the file when fast-start has not been applied.
func parseMvhd(f io.ReadSeeker, fileSize int64) (creation time.Time, duration float64, ok bool) {
	if fileSize < 16 {
		return time.Time{}, 0, false
	}

	readHeader := func(at int64) (atomType string, atomSize, headerLen int64, ok bool) {
		if at+8 > fileSize {
			return "", 0, 0, false
		}
		if _, err := f.Seek(at, io.SeekStart); err != nil {
			return "", 0, 0, false
		}
		header := make([]byte, 8)
		if _, err := io.ReadFull(f, header); err != nil {
			return "", 0, 0, false
		}
		size := int64(binary.BigEndian.Uint32(header[0:4]))
		typ := string(header[4:8])
		hdrLen := int64(8)
		switch size {
		case 1: // 64-bit extended size
			ext := make([]byte, 8)
			if _, err := io.ReadFull(f, ext); err != nil {
				return "", 0, 0, false
			}
			size = int64(binary.BigEndian.Uint64(ext))
			hdrLen = 16
		case 0: // extends to EOF
			size = fileSize - at
		}
		if size < hdrLen || at+size > fileSize {
			return "", 0, 0, false
		}
		return typ, size, hdrLen, true
	}

	// Locate the top-level moov atom.
	var moovStart, moovSize int64
	for offset := int64(0); offset < fileSize; {
		typ, size, hdrLen, hok := readHeader(offset)
		if !hok || size == 0 {
			return time.Time{}, 0, false
		}
		if typ == "moov" {
			moovStart = offset + hdrLen
			moovSize = size - hdrLen
			break
		}
		offset += size
	}
	if moovSize <= 0 {
		return time.Time{}, 0, false
	}

	// Walk moov children to mvhd.
	for inner := int64(0); inner < moovSize; {
		typ, size, hdrLen, hok := readHeader(moovStart + inner)
		if !hok || size == 0 {
			return time.Time{}, 0, false
		}
		if typ != "mvhd" {
			inner += size
			continue
		}

		payload := make([]byte, size-hdrLen)
		if _, err := io.ReadFull(f, payload); err != nil {
			return time.Time{}, 0, false
		}
		return decodeMvhd(payload)
	}
	return time.Time{}, 0, false
}

// decodeMvhd reads creation time, timescale, and duration from an mvhd
// payload (version + flags + fields). Version 1 carries 64-bit times.
func decodeMvhd(p []byte) (time.Time, float64, bool) {
	if len(p) < 4 {
		return time.Time{}, 0, false
	}
	version := p[0]

	var created uint64
	var timescale uint32
	var units uint64

	switch version {
	case 1:
		// creation(8) modification(8) timescale(4) duration(8)
		if len(p) < 4+28 {
			return time.Time{}, 0, false
		}
		created = binary.BigEndian.Uint64(p[4:12])
		timescale = binary.BigEndian.Uint32(p[20:24])
		units = binary.BigEndian.Uint64(p[24:32])
	case 0:
		// creation(4) modification(4) timescale(4) duration(4)
		if len(p) < 4+16 {
			return time.Time{}, 0, false
		}
		created = uint64(binary.BigEndian.Uint32(p[4:8]))
		timescale = binary.BigEndian.Uint32(p[12:16])
		units = uint64(binary.BigEndian.Uint32(p[16:20]))
	default:
		return time.Time{}, 0, false
	}

	var creation time.Time
	if created >= mp4Epoch {
		creation = time.Unix(int64(created-mp4Epoch), 0).UTC()
	}

	var duration float64
	if timescale > 0 {
		duration = float64(units) / float64(timescale)
	}
	return creation, duration, true
}
