package verifier

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultCacheTTL   = 10 * time.Minute
	defaultCachePurge = 30 * time.Minute
)

// Cached memoizes a deterministic verifier's decisions, keyed by a
// digest of the evidence pair. Because Violates is pure, caching can
// never change a decision; it only saves recomputation when the same
// pair is replayed (audit, re-verification, repeated challenges).
type Cached struct {
	inner Verifier
	cache *gocache.Cache
}

// NewCached wraps v with a decision cache using the default TTL
func NewCached(v Verifier) *Cached {
	return NewCachedTTL(v, defaultCacheTTL)
}

// NewCachedTTL wraps v with a decision cache using the given TTL
func NewCachedTTL(v Verifier, ttl time.Duration) *Cached {
	return &Cached{
		inner: v,
		cache: gocache.New(ttl, defaultCachePurge),
	}
}

// Violates implements Verifier
func (c *Cached) Violates(input, output []byte) bool {
	key := pairKey(input, output)
	if hit, ok := c.cache.Get(key); ok {
		return hit.(bool)
	}
	decision := c.inner.Violates(input, output)
	c.cache.Set(key, decision, gocache.DefaultExpiration)
	return decision
}

// pairKey digests the evidence pair with a length prefix so no
// (input, output) split can collide with another.
func pairKey(input, output []byte) string {
	var lenPrefix [8]byte
	binary.BigEndian.PutUint64(lenPrefix[:], uint64(len(input)))

	h := sha256.New()
	h.Write(lenPrefix[:])
	h.Write(input)
	h.Write(output)
	return string(h.Sum(nil))
}

var _ Verifier = (*Cached)(nil)
