package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"media-resolver/internal/database"
	"media-resolver/internal/indexer"
	"media-resolver/internal/workers"

	"github.com/spf13/afero"
)

const (
	// Default database directory path
	defaultDatabaseDir = "/database"
	// Default media root
	defaultMediaRoots = "/media"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	// Get database directory from env or default
	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	dbPath := filepath.Join(databaseDir, "media-index.db")

	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open index database: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", databaseDir)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	switch command {
	case "run":
		if !runIndex(ctx, db) {
			os.Exit(1)
		}
	case "stats":
		if !showStats(ctx, db) {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage()
		os.Exit(1)
	}
}

// sanitizeCommand returns a safe representation of a command string for
// display. Any character outside [a-zA-Z0-9_-] is replaced with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Media Resolver Index Management")
	fmt.Println("")
	fmt.Println("Usage: reindex <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run     - Run a full index of the media roots")
	fmt.Println("  stats   - Show current index statistics")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  DATABASE_DIR  - Path to database directory (default: %s)\n", defaultDatabaseDir)
	fmt.Printf("  MEDIA_ROOTS   - Colon-separated media roots (default: %s)\n", defaultMediaRoots)
	fmt.Println("  INDEX_WORKERS - Concurrent album workers (default: sized to CPU count)")
}

func runIndex(ctx context.Context, db *database.Database) bool {
	rootsStr := os.Getenv("MEDIA_ROOTS")
	if rootsStr == "" {
		rootsStr = defaultMediaRoots
	}
	var roots []string
	for _, root := range filepath.SplitList(rootsStr) {
		if root != "" {
			roots = append(roots, root)
		}
	}
	if len(roots) == 0 {
		fmt.Fprintln(os.Stderr, "Error: MEDIA_ROOTS is empty")
		return false
	}

	workerCount := workers.ForMixed(16)

	fmt.Printf("Indexing %d media root(s) with %d worker(s)...\n", len(roots), workerCount)

	idx := indexer.New(db, afero.NewOsFs(), indexer.Config{
		Roots:   roots,
		Workers: workerCount,
	})

	start := time.Now()
	if err := idx.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: index run failed: %v\n", err)
		return false
	}

	status := idx.GetHealthStatus()
	fmt.Println("")
	fmt.Printf("Index complete in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  Albums indexed: %d\n", status.AlbumsIndexed)
	fmt.Printf("  Assets indexed: %d\n", status.AssetsIndexed)
	return true
}

func showStats(ctx context.Context, db *database.Database) bool {
	stats, err := db.CalculateStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to calculate stats: %v\n", err)
		return false
	}

	lastIndexed, err := db.GetLastIndexed(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read last index time: %v\n", err)
	}

	fmt.Println("Index statistics:")
	fmt.Printf("  Total assets: %d\n", stats.TotalAssets)
	fmt.Printf("  Photos:       %d\n", stats.TotalPhotos)
	fmt.Printf("  Videos:       %d\n", stats.TotalVideos)
	fmt.Printf("  Albums:       %d\n", stats.TotalAlbums)
	if lastIndexed.IsZero() {
		fmt.Println("  Last indexed: never")
	} else {
		fmt.Printf("  Last indexed: %s\n", lastIndexed.Format(time.RFC1123))
	}
	return true
}
