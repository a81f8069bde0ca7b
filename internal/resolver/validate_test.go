package resolver

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
)

// permissionFs wraps a filesystem and denies Stat on one path.
type permissionFs struct {
	afero.Fs
	denied string
}

func (p *permissionFs) Stat(name string) (os.FileInfo, error) {
	if name == p.denied {
		return nil, &os.PathError{Op: "stat", Path: name, Err: os.ErrPermission}
	}
	return p.Fs.Stat(name)
}

func TestValidate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/media/Camera/IMG_live.jpg")
	writeFile(t, fs, "/media/Camera/IMG_moved.jpg")
	writeFile(t, fs, "/media/Camera/IMG_weird.cr2")
	if err := afero.WriteFile(fs, "/media/Camera/IMG_empty.jpg", nil, 0o644); err != nil {
		t.Fatalf("failed to write empty file: %v", err)
	}

	src := &fakeSource{
		matches: map[string]string{
			"IMG_gone.jpg":  "/media/Camera/IMG_moved.jpg",
			"IMG_odd.jpg":   "/media/Camera/IMG_weird.cr2",
			"IMG_trick.jpg": "/media/Camera/IMG_missing_too.jpg",
		},
	}

	svc := New(src, &permissionFs{Fs: fs, denied: "/media/Camera/IMG_locked.jpg"}, Config{})
	ctx := context.Background()

	tests := []struct {
		name       string
		uri        string
		wantValid  bool
		wantURI    string
		wantReason string
	}{
		{
			name:      "live file is valid",
			uri:       "/media/Camera/IMG_live.jpg",
			wantValid: true,
			wantURI:   "/media/Camera/IMG_live.jpg",
		},
		{
			name:       "empty file",
			uri:        "/media/Camera/IMG_empty.jpg",
			wantReason: FailureEmpty,
		},
		{
			name:       "permission denied skips recovery",
			uri:        "/media/Camera/IMG_locked.jpg",
			wantReason: FailurePermissionDenied,
		},
		{
			name:       "missing with no index match",
			uri:        "/media/Camera/IMG_vanished.jpg",
			wantReason: FailureNotFound,
		},
		{
			name:      "missing but recovered",
			uri:       "/media/Camera/IMG_gone.jpg",
			wantValid: true,
			wantURI:   "/media/Camera/IMG_moved.jpg",
		},
		{
			name:       "recovered to unsupported format",
			uri:        "/media/Camera/IMG_odd.jpg",
			wantReason: FailureUnsupported,
		},
		{
			name:       "recovered path is itself missing",
			uri:        "/media/Camera/IMG_trick.jpg",
			wantReason: FailureNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Validate(ctx, tt.uri)
			if got.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", got.IsValid, tt.wantValid)
			}
			if got.EffectiveURI != tt.wantURI {
				t.Errorf("EffectiveURI = %q, want %q", got.EffectiveURI, tt.wantURI)
			}
			if got.FailureReason != tt.wantReason {
				t.Errorf("FailureReason = %q, want %q", got.FailureReason, tt.wantReason)
			}
		})
	}
}

func TestFilterValid(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/media/Camera/IMG_live.jpg")
	writeFile(t, fs, "/media/Camera/IMG_moved.jpg")

	src := &fakeSource{
		matches: map[string]string{
			"IMG_gone.jpg": "/media/Camera/IMG_moved.jpg",
		},
	}
	svc := New(src, fs, Config{})

	meta := DeviceMetadata{CreationTime: time.Now(), FileSizeBytes: 11}
	in := []Candidate{
		{ID: "a", FileURI: "/media/Camera/IMG_live.jpg", MimeType: "image/jpeg", DeviceMetadata: meta},
		{ID: "b", FileURI: "/media/Camera/IMG_gone.jpg", MimeType: "image/jpeg", DeviceMetadata: meta},
		{ID: "c", FileURI: "/media/Camera/IMG_vanished.jpg", MimeType: "image/jpeg", DeviceMetadata: meta},
	}

	out := svc.FilterValid(context.Background(), in)
	if len(out) != 2 {
		t.Fatalf("got %d candidates, want 2", len(out))
	}
	if out[0].ID != "a" || out[0].FileURI != "/media/Camera/IMG_live.jpg" {
		t.Errorf("out[0] = %+v, want live candidate a", out[0])
	}
	if out[1].ID != "b" || out[1].FileURI != "/media/Camera/IMG_moved.jpg" {
		t.Errorf("out[1] = %+v, want recovered candidate b with rewritten uri", out[1])
	}
}

func TestFilterValidRecoversByMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/media/Camera/IMG_renamed.jpg")

	// No title match for the stale basename; the index only knows the
	// file by its size and capture time.
	src := &fakeSource{
		sizeMatches: map[int64]string{4242: "/media/Camera/IMG_renamed.jpg"},
	}
	svc := New(src, fs, Config{})
	ctx := context.Background()

	in := []Candidate{{
		ID:       "r",
		FileURI:  "/media/Camera/IMG_old_name.jpg",
		MimeType: "image/jpeg",
		DeviceMetadata: DeviceMetadata{
			CreationTime:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			FileSizeBytes: 4242,
		},
	}}

	out := svc.FilterValid(ctx, in)
	if len(out) != 1 || out[0].FileURI != "/media/Camera/IMG_renamed.jpg" {
		t.Fatalf("out = %+v, want candidate recovered to IMG_renamed.jpg", out)
	}

	// The public entry point only knows the URI, so the same stale
	// reference stays unrecoverable there.
	if got := svc.Validate(ctx, "/media/Camera/IMG_old_name.jpg"); got.IsValid {
		t.Errorf("Validate recovered %q without metadata, want not found", got.EffectiveURI)
	}
}
