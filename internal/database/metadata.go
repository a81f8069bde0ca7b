package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// GetMetadata retrieves a bookkeeping value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_metadata", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var value string
	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata sets a bookkeeping key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("set_metadata", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastIndexed returns the timestamp of the last completed index run.
// Returns zero time if the index has never run.
func (d *Database) GetLastIndexed(ctx context.Context) (time.Time, error) {
	value, err := d.GetMetadata(ctx, "last_indexed")
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if value == "" {
		return time.Time{}, nil
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return timestamp, nil
}

// SetLastIndexed stores the timestamp of the last completed index run.
func (d *Database) SetLastIndexed(ctx context.Context, t time.Time) error {
	if t.IsZero() {
		return d.SetMetadata(ctx, "last_indexed", "")
	}
	return d.SetMetadata(ctx, "last_indexed", t.Format(time.RFC3339))
}
