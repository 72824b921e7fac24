package cache

import (
	"fmt"
	"geodistance-service/internal/domain"
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type geocodeEntry struct {
	value     domain.Coordinates
	expiresAt time.Time
}

// MemoryGeocodeCache is an in-process TTL cache mapping normalized addresses
// to coordinates. Expiry is checked on read; there is no background sweeper,
// so entries that are never read again stay until Delete or Clear.
//
// It is safe for concurrent use.
type MemoryGeocodeCache struct {
	mu         sync.Mutex
	entries    map[string]geocodeEntry
	defaultTTL time.Duration
	now        Clock
}

type MemoryOption func(*MemoryGeocodeCache)

func WithClock(now Clock) MemoryOption {
	return func(c *MemoryGeocodeCache) { c.now = now }
}

// NewMemoryGeocodeCache creates an empty cache. A non-positive defaultTTL
// falls back to 24 hours.
func NewMemoryGeocodeCache(defaultTTL time.Duration, opts ...MemoryOption) *MemoryGeocodeCache {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	c := &MemoryGeocodeCache{
		entries:    make(map[string]geocodeEntry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryGeocodeCache) DefaultTTL() time.Duration { return c.defaultTTL }

// Get returns the live value for key. An expired entry is removed.
func (c *MemoryGeocodeCache) Get(key string) (domain.Coordinates, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.live(key)
	return e.value, ok
}

// Has reports liveness with the same expiry rules as Get.
func (c *MemoryGeocodeCache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.live(key)
	return ok
}

// Set inserts or replaces key, expiring ttl from now. A non-positive ttl
// uses the cache default. Coordinates must be finite.
func (c *MemoryGeocodeCache) Set(key string, value domain.Coordinates, ttl time.Duration) error {
	if !value.Finite() {
		return fmt.Errorf("set geocode cache %q: %w", key, domain.ErrInvalidCoordinates)
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	c.entries[key] = geocodeEntry{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()

	return nil
}

// Delete removes key. Missing keys are ignored.
func (c *MemoryGeocodeCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *MemoryGeocodeCache) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len counts stored entries, expired ones included.
func (c *MemoryGeocodeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// caller holds c.mu
func (c *MemoryGeocodeCache) live(key string) (geocodeEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return geocodeEntry{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return geocodeEntry{}, false
	}
	return e, true
}
