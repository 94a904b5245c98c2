package providers

import (
	"context"
	"fmt"
	"net"

	lru "github.com/hashicorp/golang-lru"

	"github.com/wayfinder-io/wayfinder/waylib"
)

const DefaultResolverCacheSize = 1024

type lookupIPAddrFunc func(ctx context.Context, hostname string) ([]net.IPAddr, error)

// netResolver is the production waylib.Resolver. It memoizes answers
// in an LRU cache: candidate host lists repeat from request to
// request, and replica addresses change rarely enough that LRU
// rotation is an acceptable refresh policy here.
type netResolver struct {
	lookupIPAddr lookupIPAddrFunc
	cache        *lru.Cache
}

func (n *netResolver) Resolve(ctx context.Context, hostname string) ([]waylib.HostAddress, error) {
	if value, ok := n.cache.Get(hostname); ok {
		return value.([]waylib.HostAddress), nil
	}

	addrs, err := n.lookupIPAddr(ctx, hostname)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", hostname, err)
	}

	rv := make([]waylib.HostAddress, 0, len(addrs))

	for _, v := range addrs {
		rv = append(rv, waylib.NewHostAddress(v.IP))
	}

	n.cache.Add(hostname, rv)

	return rv, nil
}

// NewNetResolver builds a resolver on the system one.
func NewNetResolver(cacheSize int) (waylib.Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultResolverCacheSize
	}

	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create a cache: %w", err)
	}

	return &netResolver{
		lookupIPAddr: net.DefaultResolver.LookupIPAddr,
		cache:        cache,
	}, nil
}
