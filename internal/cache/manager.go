package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Manager is a process-wide keyed cache with a fixed TTL and bulk invalidation.
//
// Entries are kept in a go-cache store created without a janitor, so expired
// entries are only dropped when they are looked up or invalidated. Every key
// ever added is also tracked separately so InvalidateAllCaches can remove all
// of them without relying on the store to enumerate its contents.
type Manager struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries *gocache.Cache
	keys    map[string]struct{}
	now     func() time.Time
}

type Option func(*Manager)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		ttl:  DefaultTTL,
		keys: make(map[string]struct{}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	// cleanup interval 0 disables the background sweep
	m.entries = gocache.New(m.ttl, 0)
	return m
}

// TryGet returns the value stored under key if it has not expired. An entry
// is expired from its expiration instant onwards; go-cache only treats it as
// expired strictly after, so the boundary is checked here. An expired entry
// is removed as a side effect.
func (m *Manager) TryGet(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	value, expiresAt, found := m.entries.GetWithExpiration(key)
	if found && !expiresAt.IsZero() && !m.now().Before(expiresAt) {
		found = false
	}
	if !found {
		if _, tracked := m.keys[key]; tracked {
			m.entries.Delete(key)
			delete(m.keys, key)
		}
		return nil, false
	}
	return value, true
}

// AddToCache stores value under key for the manager's TTL, replacing any
// previous entry and restarting its expiration window. Empty keys are ignored.
func (m *Manager) AddToCache(key string, value any) {
	if key == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Set(key, value, m.ttl)
	m.keys[key] = struct{}{}
}

// InvalidateAllCaches removes every tracked entry, expired or not.
func (m *Manager) InvalidateAllCaches() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.keys {
		m.entries.Delete(key)
	}
	m.keys = make(map[string]struct{})
}

// Len returns the number of tracked entries, including expired ones that
// have not been looked up since they expired.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}

// TTL returns the expiration window applied by AddToCache.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
