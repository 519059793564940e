package cache

import "time"

// DefaultTTL is how long a cached contact listing stays valid.
const DefaultTTL = 5 * time.Minute

// ContactCache is what the contact service needs from a cache.
// Writers only ever call InvalidateAllCaches, so they never need to know the key scheme.
type ContactCache interface {
	TryGet(key string) (any, bool)
	AddToCache(key string, value any)
	InvalidateAllCaches()
}
