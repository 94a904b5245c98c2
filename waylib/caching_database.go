package waylib

import (
	"context"
	"net"
	"time"

	"github.com/dgraph-io/ristretto"
)

type cachingDatabase struct {
	Database

	cache *ristretto.Cache
	ttl   time.Duration
}

func (c cachingDatabase) Lookup(ctx context.Context, ip net.IP) (Location, error) {
	cacheKey := ip.String()

	value, ok := c.cache.Get(cacheKey)
	if ok {
		return value.(Location), nil
	}

	location, err := c.Database.Lookup(ctx, ip)
	if err != nil {
		return Location{}, err
	}

	c.cache.SetWithTTL(cacheKey, location, 1, c.ttl)

	return location, nil
}

type cachingOfflineDatabase struct {
	OfflineDatabase
	cachingDatabase
}

func (c cachingOfflineDatabase) Lookup(ctx context.Context, ip net.IP) (Location, error) {
	return c.cachingDatabase.Lookup(ctx, ip)
}

// NewCachingDatabase wraps a database with an address-level cache. The
// TTL is an externally supplied policy knob: the core itself defines
// no expiry beyond the stale fallback of the host cache.
func NewCachingDatabase(database Database, itemsCount uint, ttl time.Duration) Database {
	cacheConfig := &ristretto.Config{
		MaxCost:     int64(itemsCount),
		NumCounters: 10 * int64(itemsCount),
		Metrics:     false,
		BufferItems: 64,
	}

	cache, err := ristretto.NewCache(cacheConfig)
	if err != nil {
		panic(err)
	}

	return cachingDatabase{
		Database: database,
		cache:    cache,
		ttl:      ttl,
	}
}

// NewCachingOfflineDatabase is NewCachingDatabase which keeps the
// offline database capabilities visible to the updater.
func NewCachingOfflineDatabase(database OfflineDatabase, itemsCount uint, ttl time.Duration) OfflineDatabase {
	return cachingOfflineDatabase{
		OfflineDatabase: database,
		cachingDatabase: NewCachingDatabase(database, itemsCount, ttl).(cachingDatabase),
	}
}
