package blocklist

import (
	"errors"
	"sync"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// DefaultFPRate is the Bloom false-positive target used when none is configured.
const DefaultFPRate = 0.01

// Options configures a Repository.
type Options struct {
	Store   Store
	Cache   DecisionCache
	Factory BloomFactory
	FPRate  float64
	Logger  log.Logger
}

// Repository composes a Store, a Bloom filter and a DecisionCache. Reads go
// bloom → cache → store; writes go to the store first, then refresh the filter
// and purge the cache.
type Repository struct {
	mu      sync.RWMutex
	store   Store
	cache   DecisionCache
	bloom   BloomFilter
	factory BloomFactory
	fpRate  float64
	logger  log.Logger
}

// NewRepository builds a Repository and loads the Bloom filter from the store.
func NewRepository(opts Options) (*Repository, error) {
	if opts.Store == nil || opts.Cache == nil || opts.Factory == nil {
		return nil, errors.New("blocklist: store, cache and bloom factory are required")
	}
	if !(opts.FPRate > 0 && opts.FPRate < 1) {
		opts.FPRate = DefaultFPRate
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	r := &Repository{
		store:   opts.Store,
		cache:   opts.Cache,
		factory: opts.Factory,
		fpRate:  opts.FPRate,
		logger:  opts.Logger,
	}
	if err := r.Rebuild(); err != nil {
		return nil, err
	}
	return r, nil
}

// Decide returns a BlockDecision for the provided domain name.
// Policy: on internal errors, prefer Allow (not blocked).
func (r *Repository) Decide(name string) domain.BlockDecision {
	cn := utils.CanonicalDNSName(name)
	if cn == "" {
		return domain.EmptyDecision()
	}
	if !r.checkBloom(cn) {
		return domain.EmptyDecision()
	}
	if d, ok := r.cache.Get(cn); ok {
		return d
	}
	dec := r.checkStore(cn)
	r.cache.Put(cn, dec)
	return dec
}

// checkBloom returns true if the store must be consulted for cn or any of its
// parents, false when every candidate is definitely absent.
func (r *Repository) checkBloom(cn string) bool {
	r.mu.RLock()
	bf := r.bloom
	r.mu.RUnlock()
	if bf == nil {
		return true
	}
	for _, p := range utils.ParentDomains(cn) {
		if bf.MightContain([]byte(p)) {
			return true
		}
	}
	return false
}

func (r *Repository) checkStore(cn string) domain.BlockDecision {
	z, ok, err := r.store.FirstMatch(cn)
	if err != nil {
		r.logger.Warn(map[string]any{"name": cn, "error": err}, "blocklist store lookup failed")
		return domain.EmptyDecision()
	}
	if !ok {
		return domain.EmptyDecision()
	}
	return domain.BlockDecision{Blocked: true, MatchedRule: z.Name, Source: z.Source}
}

// Contains reports whether name itself is in the set.
func (r *Repository) Contains(name string) (bool, error) {
	_, ok, err := r.store.Get(utils.CanonicalDNSName(name))
	return ok, err
}

// List returns every blocked domain ordered by name.
func (r *Repository) List() ([]domain.BlockedZone, error) {
	return r.store.List()
}

// Names returns the names of every blocked domain ordered by name.
func (r *Repository) Names() ([]string, error) {
	zones, err := r.store.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	return names, nil
}

// Add inserts z. A name already in the set is an AlreadyExists error.
func (r *Repository) Add(z domain.BlockedZone) error {
	z.Name = utils.CanonicalDNSName(z.Name)
	if err := z.Validate(); err != nil {
		return err
	}
	if _, ok, err := r.store.Get(z.Name); err != nil {
		return err
	} else if ok {
		return domain.AlreadyExists("block domain", "%s is already blocked", z.Name)
	}
	if _, err := r.store.Put(z); err != nil {
		return err
	}
	r.mu.Lock()
	if r.bloom != nil {
		r.bloom.Add([]byte(z.Name))
	}
	r.cache.Purge()
	r.mu.Unlock()
	return nil
}

// AddAll inserts every zone not yet in the set and returns how many were new.
func (r *Repository) AddAll(zones []domain.BlockedZone) (int, error) {
	for i := range zones {
		zones[i].Name = utils.CanonicalDNSName(zones[i].Name)
	}
	added, err := r.store.Put(zones...)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		if err := r.Rebuild(); err != nil {
			return added, err
		}
	}
	return added, nil
}

// Remove deletes name. A name not in the set is a NotFound error.
func (r *Repository) Remove(name string) error {
	cn := utils.CanonicalDNSName(name)
	ok, err := r.store.Delete(cn)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("unblock domain", "%s is not blocked", cn)
	}
	return r.Rebuild()
}

// ReplaceAll makes the set exactly zones.
func (r *Repository) ReplaceAll(zones []domain.BlockedZone) error {
	for i := range zones {
		zones[i].Name = utils.CanonicalDNSName(zones[i].Name)
	}
	if err := r.store.ReplaceAll(zones); err != nil {
		return err
	}
	return r.Rebuild()
}

// Rebuild sizes a fresh Bloom filter for the stored set, swaps it in and
// purges the decision cache.
func (r *Repository) Rebuild() error {
	zones, err := r.store.List()
	if err != nil {
		return err
	}
	bf := r.factory.New(uint64(len(zones)), r.fpRate)
	for _, z := range zones {
		bf.Add([]byte(z.Name))
	}
	r.mu.Lock()
	r.bloom = bf
	r.cache.Purge()
	r.mu.Unlock()
	r.logger.Debug(map[string]any{"domains": len(zones)}, "blocklist bloom rebuilt")
	return nil
}

// Stats returns cache and store metrics.
func (r *Repository) Stats() Stats {
	return Stats{Cache: r.cache.Stats(), Store: r.store.Stats()}
}

// Close releases the store.
func (r *Repository) Close() error {
	return r.store.Close()
}
