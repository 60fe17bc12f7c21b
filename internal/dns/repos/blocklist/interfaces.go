package blocklist

import "github.com/haukened/bindmgr/internal/dns/domain"

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds filters sized for capacity entries at the target false-positive rate.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches block decisions by canonical name with basic metrics.
type DecisionCache interface {
	Get(name string) (domain.BlockDecision, bool)
	Put(name string, d domain.BlockDecision)
	Len() int
	Purge()
	Stats() CacheStats
}

// Store is the persistent blocked-domain set.
//
// Names are canonical. FirstMatch returns the entry for name itself or for its
// closest blocked parent.
type Store interface {
	Put(zones ...domain.BlockedZone) (added int, err error)
	Delete(name string) (bool, error)
	Get(name string) (domain.BlockedZone, bool, error)
	List() ([]domain.BlockedZone, error)
	FirstMatch(name string) (domain.BlockedZone, bool, error)
	ReplaceAll(zones []domain.BlockedZone) error
	Stats() StoreStats
	Close() error
}
