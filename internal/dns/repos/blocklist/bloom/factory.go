package bloom

import (
	bitsbloom "github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
)

type factory struct{}

// NewFactory returns a BloomFactory that sizes filters with Size.
func NewFactory() blocklist.BloomFactory { return factory{} }

// New builds a filter for capacity blocked domains at the target false-positive rate.
func (factory) New(capacity uint64, fpRate float64) blocklist.BloomFilter {
	m, k := Size(capacity, fpRate)
	return &filter{bf: bitsbloom.New(uint(m), uint(k))}
}
