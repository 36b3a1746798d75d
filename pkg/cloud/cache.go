package cloud

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// cacheEntry holds a resolved account identity with its resolution time.
type cacheEntry struct {
	Account   string
	Timestamp time.Time
}

// Cache holds resolved account identities with TTL and optional disk
// persistence. The cache key is CredentialsContext.Key().
type Cache struct {
	mu      sync.RWMutex
	cache   map[string]*cacheEntry
	ttl     time.Duration
	useDisk bool
	group   singleflight.Group
}

// NewCache creates a new identity cache with the specified TTL and disk setting.
// A non-positive TTL never serves entries, so every lookup fetches.
func NewCache(ttl time.Duration, useDisk bool) *Cache {
	c := &Cache{
		cache:   make(map[string]*cacheEntry),
		ttl:     ttl,
		useDisk: useDisk,
	}
	if useDisk {
		c.loadFromDisk()
	}
	return c
}

// Get retrieves a cached account if it exists and is not expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		return "", false
	}
	return entry.Account, true
}

// Set stores an account in the cache.
func (c *Cache) Set(key, account string) {
	c.mu.Lock()
	c.cache[key] = &cacheEntry{
		Account:   account,
		Timestamp: time.Now(),
	}
	c.mu.Unlock()

	if c.useDisk {
		c.saveToDisk()
	}
}

// GetOrFetch returns the cached account for key when available, otherwise it
// calls fetch and caches the result. Concurrent callers for the same key share
// one fetch.
func (c *Cache) GetOrFetch(
	ctx context.Context,
	key string,
	fetch func(ctx context.Context) (string, error),
) (string, error) {
	if account, ok := c.Get(key); ok {
		log.Debugf("using cached account identity %s", account)
		return account, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		account, err := fetch(ctx)
		if err != nil {
			return "", err
		}
		c.Set(key, account)
		return account, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// getCachePath returns the path to the disk cache file.
func (c *Cache) getCachePath() string {
	home, err := homedir.Dir()
	if err != nil {
		log.Debugf("failed to get home directory for identity cache: %v", err)
		return ""
	}
	return filepath.Join(home, ".eksinv", "identity-cache.json")
}

// loadFromDisk loads cached identities from disk.
func (c *Cache) loadFromDisk() {
	cachePath := c.getCachePath()
	if cachePath == "" {
		return
	}

	// #nosec G304 - cachePath is computed from home directory, not user input
	data, err := os.ReadFile(cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Debugf("failed to read identity cache from disk: %v", err)
		}
		return
	}

	var diskCache map[string]*cacheEntry
	if err := json.Unmarshal(data, &diskCache); err != nil {
		log.Debugf("failed to unmarshal identity cache: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range diskCache {
		if entry != nil && time.Since(entry.Timestamp) <= c.ttl {
			c.cache[key] = entry
		}
	}

	log.Debugf("loaded %d identity cache entries from disk", len(c.cache))
}

// saveToDisk saves the current cache to disk. Failures are only logged.
func (c *Cache) saveToDisk() {
	cachePath := c.getCachePath()
	if cachePath == "" {
		return
	}

	cacheDir := filepath.Dir(cachePath)
	if err := os.MkdirAll(cacheDir, 0750); err != nil {
		log.Debugf("failed to create cache directory: %v", err)
		return
	}

	c.mu.RLock()
	data, err := json.Marshal(c.cache)
	c.mu.RUnlock()
	if err != nil {
		log.Debugf("failed to marshal identity cache: %v", err)
		return
	}

	if err := os.WriteFile(cachePath, data, 0600); err != nil {
		log.Debugf("failed to write identity cache to disk: %v", err)
	}
}
