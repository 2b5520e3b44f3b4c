// Package cache is a flat-file JSON cache with per-entry expiry, shared by
// the API-backed tools so repeated lookups within the TTL skip the network.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "taskninja/internal/errors"
)

type entry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Cache stores one JSON file per key under a directory.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// New creates a cache rooted at dir. Entries older than ttl are misses.
func New(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl, now: time.Now}
}

func (c *Cache) pathFor(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Get loads the cached value for key into out. The second return is false
// on a miss, whether absent, expired, or unreadable.
func (c *Cache) Get(key string, out any) (bool, error) {
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		return false, nil
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return false, nil
	}
	if c.now().After(e.ExpiresAt) {
		return false, nil
	}
	if err := json.Unmarshal(e.Payload, out); err != nil {
		return false, apperrors.Wrap(apperrors.CodeFileFormat, fmt.Sprintf("corrupt cache entry for %q", key), err)
	}
	return true, nil
}

// Put stores v under key with the cache TTL.
func (c *Cache) Put(key string, v any) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create cache directory", err)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode cache payload", err)
	}
	e := entry{ExpiresAt: c.now().Add(c.ttl), Payload: payload}
	data, err := json.Marshal(e)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode cache entry", err)
	}
	if err := os.WriteFile(c.pathFor(key), data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write cache entry", err)
	}
	return nil
}

// Purge removes every expired entry and reports how many were deleted.
func (c *Cache) Purge() (int, error) {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeIO, "failed to scan cache directory", err)
	}
	removed := 0
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(data, &e); err == nil && c.now().Before(e.ExpiresAt) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed, nil
}
