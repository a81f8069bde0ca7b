package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// VolumeResolver maps file paths to known volume names for metric labeling.
// It uses longest-prefix matching on absolute paths.
type VolumeResolver struct {
	// mounts is sorted by path length descending for longest-prefix matching
	mounts []volumeMount
}

type volumeMount struct {
	path string // absolute path with trailing slash (e.g., "/media/")
	name string // volume label (e.g., "media")
}

// NewVolumeResolver creates a resolver from a map of volume name → absolute path.
// Example:
//
//	NewVolumeResolver(map[string]string{
//	    "media":    "/media",
//	    "database": "/database",
//	})
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	mounts := make([]volumeMount, 0, len(volumes))
	for name, path := range volumes {
		// Normalize: ensure absolute path with trailing slash for prefix matching
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		if !strings.HasSuffix(absPath, "/") {
			absPath += "/"
		}
		mounts = append(mounts, volumeMount{path: absPath, name: name})
	}

	// Sort by path length descending so longest (most specific) prefix matches first
	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].path) > len(mounts[j].path)
	})

	return &VolumeResolver{mounts: mounts}
}

// Resolve returns the volume name for a given file path.
// Returns "unknown" if the path doesn't match any configured volume.
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return "unknown"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "unknown"
	}

	for _, mount := range vr.mounts {
		if strings.HasPrefix(absPath+"/", mount.path) || strings.HasPrefix(absPath, mount.path) {
			return mount.name
		}
	}

	return "unknown"
}

// defaultResolver is the package-level resolver set at startup
var defaultResolver *VolumeResolver

// SetDefaultVolumeResolver sets the package-level volume resolver.
// Call this once at startup after loading configuration.
func SetDefaultVolumeResolver(vr *VolumeResolver) {
	defaultResolver = vr
}

// record is the shared metric-recording path for probe operations.
// Errors pass through unwrapped so callers can use errors.Is against
// os.ErrNotExist and os.ErrPermission.
func record(operation, path string, start time.Time, err error) {
	o := observe()
	if o == nil {
		return
	}
	o.ObserveOperation(defaultResolver.Resolve(path), operation, time.Since(start).Seconds(), err)
}

// Stat probes a path on the given filesystem, recording operation metrics.
func Stat(fs afero.Fs, path string) (os.FileInfo, error) {
	start := time.Now()
	info, err := fs.Stat(path)
	record("stat", path, start, err)
	return info, err
}

// Size returns the byte length of a file. A missing or unreadable file
// returns the underlying error; a directory returns a size of 0.
func Size(fs afero.Fs, path string) (int64, error) {
	info, err := Stat(fs, path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, nil
	}
	return info.Size(), nil
}

// Open opens a file for reading on the given filesystem, recording
// operation metrics.
func Open(fs afero.Fs, path string) (afero.File, error) {
	start := time.Now()
	f, err := fs.Open(path)
	record("open", path, start, err)
	return f, err
}

// ReadDir lists a directory on the given filesystem, recording operation
// metrics.
func ReadDir(fs afero.Fs, path string) ([]os.FileInfo, error) {
	start := time.Now()
	entries, err := afero.ReadDir(fs, path)
	record("readdir", path, start, err)
	return entries, err
}
