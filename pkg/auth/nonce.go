package auth

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// NonceCache is an optional, bounded record of recently-seen
// (alias, nonce) pairs. The core does not itself defend against nonce
// replay within the freshness window; this is an opt-in layer for
// operators who want that extra guarantee.
type NonceCache struct {
	seen *expirable.LRU[string, struct{}]
}

// NewNonceCache builds a cache holding up to size entries, each
// expiring after ttl. ttl should match the verifier's max_age_ms so a
// nonce can never be "seen" after it would be rejected as stale
// anyway.
func NewNonceCache(size int, ttl time.Duration) *NonceCache {
	return &NonceCache{seen: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

func nonceCacheKey(alias, nonce string) string {
	return alias + "\x00" + nonce
}

// SeenBefore reports whether (alias, nonce) was already recorded, and
// records it if not. A true result means the caller should treat this
// request as a replay.
func (c *NonceCache) SeenBefore(alias, nonce string) bool {
	key := nonceCacheKey(alias, nonce)
	if _, ok := c.seen.Get(key); ok {
		return true
	}
	c.seen.Add(key, struct{}{})
	return false
}
