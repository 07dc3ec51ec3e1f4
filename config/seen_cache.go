package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const seenCacheFile = "seen-cache.json"

// SeenCache records which animations have already played to the end,
// keyed by Animation.Fingerprint. `play --once` uses it to show the
// resting text instead of replaying.
type SeenCache struct {
	mu   sync.RWMutex
	seen map[string]time.Time // fingerprint -> first completion
	dir  string               // directory holding the cache file
}

// NewSeenCache creates a cache that persists to dir.
func NewSeenCache(dir string) *SeenCache {
	return &SeenCache{
		seen: make(map[string]time.Time),
		dir:  dir,
	}
}

// Load reads the cache from disk. A missing file is not an error.
func (c *SeenCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(c.dir, seenCacheFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, &c.seen); err != nil {
		return err
	}
	if c.seen == nil {
		c.seen = make(map[string]time.Time)
	}
	return nil
}

// Save writes the cache to disk, creating the directory if needed.
func (c *SeenCache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.seen, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, seenCacheFile), data, 0o644)
}

// Seen reports whether the fingerprint has been marked.
func (c *SeenCache) Seen(fingerprint string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.seen[fingerprint]
	return ok
}

// MarkSeen records the fingerprint. The first time is kept.
func (c *SeenCache) MarkSeen(fingerprint string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[fingerprint]; !ok {
		c.seen[fingerprint] = at.UTC()
	}
}

// Forget drops one fingerprint, or every entry when fingerprint is empty.
func (c *SeenCache) Forget(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fingerprint == "" {
		c.seen = make(map[string]time.Time)
		return
	}
	delete(c.seen, fingerprint)
}
