package identity

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedResolver memoizes Resolve results. Resolution is pure, so entries
// only expire to bound memory in long-running renderers.
type CachedResolver struct {
	resolver *Resolver
	cache    *gocache.Cache
}

// NewCachedResolver wraps resolver. A nil resolver uses the default rules.
func NewCachedResolver(resolver *Resolver, ttl, cleanupInterval time.Duration) *CachedResolver {
	if resolver == nil {
		resolver = defaultResolver
	}
	return &CachedResolver{
		resolver: resolver,
		cache:    gocache.New(ttl, cleanupInterval),
	}
}

// Resolve returns the cached identity for raw, resolving it on a miss.
func (c *CachedResolver) Resolve(raw string) Identity {
	if v, found := c.cache.Get(raw); found {
		return v.(Identity)
	}
	id := c.resolver.Resolve(raw)
	c.cache.SetDefault(raw, id)
	return id
}

// Len returns the number of cached entries.
func (c *CachedResolver) Len() int {
	return c.cache.ItemCount()
}
