package waylib

import (
	"context"
	"net"
)

// Locator resolves IP addresses and hostnames to coordinates using a
// pair of injected per-family databases and an injected resolver.
// Either database may be absent; an absent database answers like one
// with no matching records.
//
// Locator keeps the per-hostname cache described on hostCache. The
// cache is written only by the success path of HostLookup and read
// only by its failure path.
type Locator struct {
	v4       Database
	v6       Database
	resolver Resolver
	cache    *hostCache
	logger   Logger
	v4Stats  *UsageStats
	v6Stats  *UsageStats
}

// AddrLookup maps a single IP address to a location using the database
// matching the address's own family. All failure modes collapse into
// an error wrapping ErrNotFound.
func (l *Locator) AddrLookup(ctx context.Context, ip net.IP) (Location, error) {
	address := NewHostAddress(ip)

	var db Database
	var stats *UsageStats

	switch address.Family {
	case AddressFamilyV4:
		db, stats = l.v4, l.v4Stats
	case AddressFamilyV6:
		db, stats = l.v6, l.v6Stats
	}

	if db == nil {
		return Location{}, ErrNoDatabase
	}

	location, err := db.Lookup(ctx, ip)

	stats.Used(err)

	if err != nil {
		l.logger.LookupError(ip.String(), err)

		return Location{}, ErrUnknownAddress
	}

	return location, nil
}

// HostLookup maps a hostname to a location. IPv4 addresses are tried
// first, in resolver-returned order, because IPv4 geolocation data is
// typically denser; IPv6 addresses follow the same way.
//
// A success overwrites the cached entry for the hostname with the
// given logical clock value. A failure falls back to a previously
// cached location unconditionally, ignoring any notion of freshness,
// so a transient DNS or database outage does not break selection.
func (l *Locator) HostLookup(ctx context.Context, now int64, hostname string) (Location, error) {
	addresses, err := l.resolver.Resolve(ctx, hostname)
	if err != nil {
		l.logger.LookupError(hostname, err)
	}

	for _, family := range []AddressFamily{AddressFamilyV4, AddressFamilyV6} {
		for _, address := range addresses {
			if address.Family != family {
				continue
			}

			location, err := l.AddrLookup(ctx, address.IP)
			if err != nil {
				continue
			}

			l.cache.put(hostname, location, now)

			return location, nil
		}
	}

	if entry, ok := l.cache.get(hostname); ok {
		return entry.location, nil
	}

	return Location{}, ErrUnresolvedHost
}

// CacheLen returns a number of hostnames with a known location.
func (l *Locator) CacheLen() int {
	return l.cache.len()
}

// UsageStats returns lookup counters for both family databases.
func (l *Locator) UsageStats() []*UsageStats {
	return []*UsageStats{l.v4Stats, l.v6Stats}
}

// NewLocator builds a Locator. Either database (but not the resolver
// or the logger) may be nil.
func NewLocator(v4, v6 Database, resolver Resolver, logger Logger) *Locator {
	v4Name, v6Name := "ipv4", "ipv6"

	if v4 != nil {
		v4Name = v4.Name()
	}

	if v6 != nil {
		v6Name = v6.Name()
	}

	return &Locator{
		v4:       v4,
		v6:       v6,
		resolver: resolver,
		cache:    newHostCache(),
		logger:   logger,
		v4Stats:  newUsageStats(v4Name),
		v6Stats:  newUsageStats(v6Name),
	}
}
