package zonecache

import (
	"slices"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
)

type entry struct {
	stamp   zonefile.Stamp
	records []domain.Record
}

// ZoneCache keeps parsed record lists per zone so listings do not re-read
// unchanged files. An entry is only served while the caller's file stamp
// matches the stamp it was stored with.
type ZoneCache struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, entry]
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New creates a cache holding at most size zones.
func New(size int) (*ZoneCache, error) {
	zc := &ZoneCache{}
	cache, err := lru.NewWithEvict(size, func(string, entry) {
		zc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	zc.lru = cache
	return zc, nil
}

// Get returns a copy of the cached records for zone when stamp still matches.
func (zc *ZoneCache) Get(zone string, stamp zonefile.Stamp) ([]domain.Record, bool) {
	zone = utils.CanonicalDNSName(zone)

	zc.mu.Lock()
	e, ok := zc.lru.Get(zone)
	if ok && e.stamp != stamp {
		zc.lru.Remove(zone)
		ok = false
	}
	zc.mu.Unlock()

	if !ok {
		zc.misses.Add(1)
		return nil, false
	}
	zc.hits.Add(1)
	return slices.Clone(e.records), true
}

// Put replaces the records stored for zone.
func (zc *ZoneCache) Put(zone string, stamp zonefile.Stamp, records []domain.Record) {
	zone = utils.CanonicalDNSName(zone)
	zc.mu.Lock()
	zc.lru.Add(zone, entry{stamp: stamp, records: slices.Clone(records)})
	zc.mu.Unlock()
}

// RemoveZone drops the entry for zone, if any.
func (zc *ZoneCache) RemoveZone(zone string) {
	zone = utils.CanonicalDNSName(zone)
	zc.mu.Lock()
	zc.lru.Remove(zone)
	zc.mu.Unlock()
}

// Zones returns the cached zone names, oldest first.
func (zc *ZoneCache) Zones() []string {
	zc.mu.Lock()
	defer zc.mu.Unlock()
	return zc.lru.Keys()
}

// Count returns the total number of cached records across all zones.
func (zc *ZoneCache) Count() int {
	zc.mu.Lock()
	defer zc.mu.Unlock()
	n := 0
	for _, e := range zc.lru.Values() {
		n += len(e.records)
	}
	return n
}

// Purge empties the cache.
func (zc *ZoneCache) Purge() {
	zc.mu.Lock()
	zc.lru.Purge()
	zc.mu.Unlock()
}

// Stats returns cumulative hit, miss and eviction counters.
func (zc *ZoneCache) Stats() (hits, misses, evictions uint64) {
	return zc.hits.Load(), zc.misses.Load(), zc.evictions.Load()
}

var _ zonefile.RecordCache = (*ZoneCache)(nil)
