package main

import (
	"context"
	"path/filepath"
	"testing"

	"media-resolver/internal/database"
)

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Plain command", "run", "run"},
		{"Hyphenated", "dry-run", "dry-run"},
		{"Shell metacharacters", "run; rm -rf /", "run__rm_-rf__"},
		{"Newlines", "run\nstats", "run_stats"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeCommand(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShowStatsEmptyIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite-backed test in short mode")
	}

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if !showStats(context.Background(), db) {
		t.Error("Expected showStats to succeed on an empty index")
	}
}

func TestRunIndexMissingRoots(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping sqlite-backed test in short mode")
	}

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A media root that does not exist is skipped with a warning, so the
	// run itself still succeeds with nothing indexed.
	t.Setenv("MEDIA_ROOTS", filepath.Join(t.TempDir(), "missing"))
	if !runIndex(context.Background(), db) {
		t.Error("Expected runIndex to succeed for a missing root")
	}

	stats, err := db.CalculateStats(context.Background())
	if err != nil {
		t.Fatalf("CalculateStats: %v", err)
	}
	if stats.TotalAssets != 0 {
		t.Errorf("Expected 0 assets, got %d", stats.TotalAssets)
	}
}
