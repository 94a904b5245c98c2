package waylib

import (
	"context"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	DefaultWorkerPoolSize = 4096

	workerPoolExpireTime = time.Minute
)

// Wayfinder is a main entity of waylib: it orders candidate replica
// hosts by proximity to a client. Host lookups fan out on a shared
// worker pool because every lookup may suspend on the resolver or a
// database.
type Wayfinder struct {
	locator    *Locator
	logger     Logger
	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	workerPool *ants.PoolWithFunc
	closed     bool
}

type geosortTask struct {
	ctx      context.Context
	now      int64
	hostname string
	index    int
	results  chan<- geosortResult
}

type geosortResult struct {
	index    int
	location Location
	err      error
}

// Geosort resolves every hostname and returns the permutation of
// original indices ordered by non-decreasing distance from the client
// location. Equal distances keep their original relative order.
//
// The operation is all-or-nothing: if any hostname yields no location,
// ok is false and the returned slice must not be relied on. The caller
// is expected to fall back to a non-geographic ordering then.
func (w *Wayfinder) Geosort(ctx context.Context,
	now int64,
	client Location,
	hostnames []string) ([]int, bool) {
	w.rwmutex.RLock()
	defer w.rwmutex.RUnlock()

	if w.closed {
		return nil, false
	}

	results := make(chan geosortResult, len(hostnames))

	for i, hostname := range hostnames {
		task := geosortTask{
			ctx:      ctx,
			now:      now,
			hostname: hostname,
			index:    i,
			results:  results,
		}

		if err := w.workerPool.Invoke(task); err != nil {
			return nil, false
		}
	}

	distances := make([]float64, len(hostnames))

	for range hostnames {
		select {
		case <-ctx.Done():
			return nil, false
		case res := <-results:
			if res.err != nil {
				return nil, false
			}

			distances[res.index] = client.DistanceTo(res.location)
		}
	}

	order := make([]int, len(hostnames))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		return distances[order[i]] < distances[order[j]]
	})

	return order, true
}

// Locate maps a single IP address to a location.
func (w *Wayfinder) Locate(ctx context.Context, ip net.IP) (Location, error) {
	w.rwmutex.RLock()
	defer w.rwmutex.RUnlock()

	if w.closed {
		return Location{}, ErrWayfinderShutdown
	}

	return w.locator.AddrLookup(ctx, ip)
}

// LocateHost maps a hostname to a location.
func (w *Wayfinder) LocateHost(ctx context.Context, now int64, hostname string) (Location, error) {
	w.rwmutex.RLock()
	defer w.rwmutex.RUnlock()

	if w.closed {
		return Location{}, ErrWayfinderShutdown
	}

	return w.locator.HostLookup(ctx, now, hostname)
}

// UsageStats returns lookup counters of the underlying databases.
func (w *Wayfinder) UsageStats() []*UsageStats {
	return w.locator.UsageStats()
}

// CacheLen returns a number of hostnames with a known location.
func (w *Wayfinder) CacheLen() int {
	return w.locator.CacheLen()
}

func (w *Wayfinder) Shutdown() {
	w.rwmutex.Lock()
	defer w.rwmutex.Unlock()

	w.closed = true

	w.closeOnce.Do(func() {
		w.workerPool.Release()
	})
}

func NewWayfinder(locator *Locator, logger Logger, workerPoolSize int) (*Wayfinder, error) {
	if workerPoolSize <= 0 {
		workerPoolSize = DefaultWorkerPoolSize
	}

	wf := &Wayfinder{
		locator: locator,
		logger:  logger,
	}

	pool, err := ants.NewPoolWithFunc(workerPoolSize,
		func(arg interface{}) {
			task := arg.(geosortTask)
			location, err := wf.locator.HostLookup(task.ctx, task.now, task.hostname)

			select {
			case task.results <- geosortResult{index: task.index, location: location, err: err}:
			case <-task.ctx.Done():
			}
		},
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		return nil, err
	}

	wf.workerPool = pool

	return wf, nil
}
