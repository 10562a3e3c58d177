package cache

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// keyVersion is bumped whenever the cached payload shape changes
const keyVersion = "logicguard:v1:"

// CacheKey derives a key from its parts. Parts are length-prefixed so
// ("ab", "c") and ("a", "bc") never collide.
func CacheKey(parts ...string) string {
	h := blake3.New()
	var n [8]byte
	for _, p := range parts {
		l := uint64(len(p))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(p))
	}
	return keyVersion + hex.EncodeToString(h.Sum(nil))
}
