// Package cache provides the response cache for fetched pages.
//
// Bodies are stored in a SQLite database keyed by URL with a per-entry
// expiry, fronted by a small in-memory LRU so pages re-read within one
// run never touch the disk.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/orgscout/orgscout/internal/constants"
	"github.com/orgscout/orgscout/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS pages (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_expires ON pages(expires_at);
`

type memEntry struct {
	value     string
	expiresAt time.Time
}

// SessionStats counts cache activity for the current process.
type SessionStats struct {
	Hits   int
	Misses int
}

// Store is a key-value page cache with per-entry expiry.
// Expired entries behave as absent; Set always replaces.
type Store struct {
	db  *sql.DB
	mem *lru.Cache[string, memEntry]
	ttl time.Duration

	mu    sync.Mutex
	stats SessionStats
}

// DefaultPath returns the default cache database location.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orgscout", "cache.db"), nil
}

// Open opens (creating if necessary) the cache database at path.
// A ttl of zero uses the default page TTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = constants.PageCacheTTL
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %q: %w", path, err)
	}
	// Single connection avoids "database is locked" errors
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	mem, err := lru.New[string, memEntry](constants.MemoryCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, mem: mem, ttl: ttl}

	// Sweep stale rows on startup so Stats stays meaningful
	if removed, err := s.CleanExpired(); err != nil {
		log.Debug("cache sweep failed", "error", err)
	} else if removed > 0 {
		log.Debug("cache sweep", "removed", removed)
	}

	return s, nil
}

// Get returns the cached value for key, or ok=false if absent or expired.
func (s *Store) Get(key string) (string, bool) {
	now := time.Now()

	if e, ok := s.mem.Get(key); ok && now.Before(e.expiresAt) {
		s.recordHit(true)
		return e.value, true
	}

	var value string
	var expiresAt int64
	err := s.db.QueryRow(
		`SELECT value, expires_at FROM pages WHERE key = ? AND expires_at > ?`,
		key, now.UnixMilli(),
	).Scan(&value, &expiresAt)
	if err != nil {
		s.recordHit(false)
		return "", false
	}

	s.mem.Add(key, memEntry{value: value, expiresAt: time.UnixMilli(expiresAt)})
	s.recordHit(true)
	return value, true
}

// Set stores value under key with the store's TTL, replacing any
// previous entry.
func (s *Store) Set(key, value string) error {
	expiresAt := time.Now().Add(s.ttl)
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO pages (key, value, expires_at) VALUES (?, ?, ?)`,
		key, value, expiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	s.mem.Add(key, memEntry{value: value, expiresAt: expiresAt})
	return nil
}

// CleanExpired removes expired rows and returns how many were deleted.
func (s *Store) CleanExpired() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM pages WHERE expires_at <= ?`, time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear removes all cached entries.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM pages`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.mem.Purge()
	return nil
}

// Stats returns total and still-valid entry counts.
func (s *Store) Stats() (total, valid int, err error) {
	if err = s.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&total); err != nil {
		return 0, 0, err
	}
	err = s.db.QueryRow(`SELECT COUNT(*) FROM pages WHERE expires_at > ?`,
		time.Now().UnixMilli()).Scan(&valid)
	return total, valid, err
}

// Session returns hit/miss counts for this process.
func (s *Store) Session() SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) recordHit(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hit {
		s.stats.Hits++
	} else {
		s.stats.Misses++
	}
}
