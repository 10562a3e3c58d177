package cache

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/logicguard/internal/model"
)

// sweepInterval is how often go-cache drops expired memory entries
const sweepInterval = 10 * time.Minute

// LayeredCache reads through an in-process tier to a disk tier. Disk hits
// are copied up so repeated lookups in one run stay in memory.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, sweepInterval),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// FromConfig returns nil when caching is disabled, a memory cache when no
// directory is configured, and a layered cache otherwise
func FromConfig(cfg model.CacheConfig) Cache {
	switch {
	case !cfg.Enabled:
		return nil
	case cfg.Dir == "":
		return NewMemoryCache(cfg.MemoryTTL, sweepInterval)
	default:
		return NewLayeredCache(cfg.MemoryTTL, ExpandHome(cfg.Dir), cfg.DiskTTL)
	}
}

// ExpandHome resolves a leading "~" against the home directory
func ExpandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if v, ok := c.memory.Get(key); ok {
		return v, true
	}
	v, ok := c.disk.Get(key)
	if !ok {
		return nil, false
	}
	_ = c.memory.Set(key, v, 0)
	return v, true
}

// Set writes both tiers; a failed disk write still leaves the memory copy
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	return errors.Join(c.memory.Set(key, value, ttl), c.disk.Set(key, value, ttl))
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
