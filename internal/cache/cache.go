// Package cache is the best-effort process-wide result cache used by
// the surrounding service: recognized text keyed by the image content
// hash. Every failure degrades to a miss; the pipeline never depends
// on it.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	content_hash TEXT PRIMARY KEY,
	text         TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// Cache is a sqlite-backed content-hash to result-text store.
type Cache struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the cache database at path.
func Open(path string, log *slog.Logger) (*Cache, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init result cache: %w", err)
	}
	return &Cache{db: db, log: log}, nil
}

// Hash returns the content hash used as the cache key.
func Hash(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// Get returns the cached text for a content hash, or ("", false) on a
// miss or any error.
func (c *Cache) Get(ctx context.Context, hash string) (string, bool) {
	var text string
	err := c.db.QueryRowContext(ctx,
		`SELECT text FROM results WHERE content_hash = ?`, hash,
	).Scan(&text)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Warn("cache.get.soft_fail", "error", err)
		}
		return "", false
	}
	return text, true
}

// Put stores a result. Errors are logged and swallowed.
func (c *Cache) Put(ctx context.Context, hash, text string) {
	start := time.Now()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO results (content_hash, text) VALUES (?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET text = excluded.text`,
		hash, text,
	)
	if err != nil {
		c.log.Warn("cache.put.soft_fail", "error", err)
		return
	}
	c.log.Debug("cache.put.ok", "elapsed_ms", time.Since(start).Milliseconds())
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
