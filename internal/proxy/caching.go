package proxy

import (
	"slices"
	"sync"
	"time"

	"github.com/nerrad567/smartcity-core/internal/device"
	"github.com/nerrad567/smartcity-core/internal/subsystem"
)

// Cache keys used by the caching proxy.
const (
	CacheKeyStatus  = "status"
	CacheKeyDevices = "devices"
)

type cacheEntry struct {
	value   any
	created time.Time
	ttl     time.Duration
}

// CacheStats describes the current cache contents.
type CacheStats struct {
	Entries int      `json:"entries"`
	Keys    []string `json:"keys"`
	Hits    uint64   `json:"hits"`
	Misses  uint64   `json:"misses"`
}

// Caching memoises Status and Devices. Start and Stop flush the whole cache;
// AddDevice and RemoveDevice flush the devices entry. Flushes happen before
// the call is forwarded.
//
// All public methods are thread-safe.
type Caching struct {
	inner  subsystem.Subsystem
	logger Logger
	now    func() time.Time
	ttls   TTLs

	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    uint64
	misses  uint64
}

var _ subsystem.Subsystem = (*Caching)(nil)

// NewCaching wraps inner with a TTL cache.
func NewCaching(inner subsystem.Subsystem, opts ...Option) *Caching {
	o := buildOptions(opts)
	return &Caching{
		inner:   inner,
		logger:  o.logger,
		now:     o.now,
		ttls:    o.ttls,
		entries: make(map[string]cacheEntry),
	}
}

// CachingStage returns a Stage that wraps with NewCaching.
func CachingStage(opts ...Option) Stage {
	return func(s subsystem.Subsystem) subsystem.Subsystem {
		return NewCaching(s, opts...)
	}
}

// TTLs returns the configured lifetimes.
func (c *Caching) TTLs() TTLs { return c.ttls }

// get returns a live entry. An entry older than its TTL is evicted.
func (c *Caching) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Sub(e.created) > e.ttl {
		delete(c.entries, key)
		c.logger.Debug("cache expired", "subsystem", c.inner.Name(), "key", key)
		ok = false
	}
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

func (c *Caching) set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttls.Default
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, created: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// InvalidateCache removes the named keys, or every entry when none are given.
func (c *Caching) InvalidateCache(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(keys) == 0 {
		clear(c.entries)
		c.logger.Debug("cache cleared", "subsystem", c.inner.Name())
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.logger.Debug("cache invalidated", "subsystem", c.inner.Name(), "keys", keys)
}

// Stats returns the cache contents with keys sorted.
func (c *Caching) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return CacheStats{Entries: len(keys), Keys: keys, Hits: c.hits, Misses: c.misses}
}

// Name returns "Cached[<inner name>]".
func (c *Caching) Name() string                 { return "Cached[" + c.inner.Name() + "]" }
func (c *Caching) Category() subsystem.Category { return c.inner.Category() }
func (c *Caching) IsActive() bool               { return c.inner.IsActive() }

func (c *Caching) Start() error {
	c.InvalidateCache()
	return c.inner.Start()
}

func (c *Caching) Stop() error {
	c.InvalidateCache()
	return c.inner.Stop()
}

func (c *Caching) Status() string {
	if v, ok := c.get(CacheKeyStatus); ok {
		return v.(string)
	}
	status := c.inner.Status()
	c.set(CacheKeyStatus, status, c.ttls.Status)
	return status
}

// Devices returns a fresh copy of the cached slice on every call.
func (c *Caching) Devices() []device.Device {
	if v, ok := c.get(CacheKeyDevices); ok {
		return slices.Clone(v.([]device.Device))
	}
	devices := c.inner.Devices()
	c.set(CacheKeyDevices, slices.Clone(devices), c.ttls.Devices)
	return devices
}

func (c *Caching) AddDevice(d device.Device) error {
	c.InvalidateCache(CacheKeyDevices)
	return c.inner.AddDevice(d)
}

func (c *Caching) RemoveDevice(id string) (bool, error) {
	c.InvalidateCache(CacheKeyDevices)
	return c.inner.RemoveDevice(id)
}
