package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/logicguard/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("ab", "c")
	b := CacheKey("a", "bc")
	if a == b {
		t.Error("length-prefixed parts should not collide")
	}
	if a != CacheKey("ab", "c") {
		t.Error("keys should be stable")
	}
	if !strings.HasPrefix(a, keyVersion) {
		t.Errorf("expected %s prefix, got %s", keyVersion, a)
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	c.Get("missing")
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats = %d hits, %d misses", hits, misses)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d", c.Len())
	}
	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestDiskCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("oracle", "spelling", "doc")

	if err := c.Set(key, []byte(`{"spelling":[]}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok := c.Get(key); !ok || string(v) != `{"spelling":[]}` {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if strings.Contains(filepath.Base(c.path(key)), ":") {
		t.Errorf("cache file name should not contain ':': %s", c.path(key))
	}

	// A file holding another key is treated as a miss
	foreign := c.path("k2")
	if err := os.MkdirAll(filepath.Dir(foreign), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(foreign, []byte(`{"key":"k3","data":"eA==","expires_at":"2999-01-01T00:00:00Z"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k2"); ok {
		t.Error("expected a key mismatch to miss")
	}

	// Expired entries are misses and get removed
	now := time.Now()
	c.now = func() time.Time { return now }
	if err := c.Set("old", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, ok := c.Get("old"); ok {
		t.Error("expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("old")); !os.IsNotExist(err) {
		t.Error("expected expired file to be removed")
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Error("expected miss after Clear")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	disk := NewDiskCache(dir, time.Hour)
	if err := disk.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	if v, ok := c.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
	if _, ok := c.memory.Get("k"); !ok {
		t.Error("expected disk hit to be promoted to memory")
	}
}

func TestFromConfig(t *testing.T) {
	if c := FromConfig(model.CacheConfig{Enabled: false}); c != nil {
		t.Errorf("expected nil cache when disabled, got %T", c)
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true, MemoryTTL: time.Minute}).(*MemoryCache); !ok {
		t.Error("expected memory-only cache without a directory")
	}
	if _, ok := FromConfig(model.CacheConfig{Enabled: true, Dir: t.TempDir()}).(*LayeredCache); !ok {
		t.Error("expected layered cache with a directory")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/.logicguard/cache"); got != filepath.Join(home, ".logicguard/cache") {
		t.Errorf("ExpandHome = %s", got)
	}
	if got := ExpandHome("/tmp/x"); got != "/tmp/x" {
		t.Errorf("ExpandHome changed an absolute path: %s", got)
	}
}
