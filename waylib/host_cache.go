package waylib

import "sync"

// cacheEntry is the last known location of a hostname. insertedAt is
// the caller-supplied logical clock value of the successful lookup
// which produced it, kept so an outer layer can impose its own
// staleness policy.
type cacheEntry struct {
	hostname   string
	location   Location
	insertedAt int64
}

// hostCache maps a hostname to its last successfully resolved
// location. Entries are only ever replaced by a fresh successful
// lookup for the same hostname, never evicted by size or time
// pressure: a stale location still beats having none when the
// resolver or databases are down.
type hostCache struct {
	mutex   sync.RWMutex
	entries map[string]cacheEntry
}

func (h *hostCache) get(hostname string) (cacheEntry, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	entry, ok := h.entries[hostname]

	return entry, ok
}

func (h *hostCache) put(hostname string, location Location, now int64) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.entries[hostname] = cacheEntry{
		hostname:   hostname,
		location:   location,
		insertedAt: now,
	}
}

func (h *hostCache) len() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.entries)
}

func newHostCache() *hostCache {
	return &hostCache{
		entries: map[string]cacheEntry{},
	}
}
