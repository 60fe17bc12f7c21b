package blocklist_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/bloom"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/bolt"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *blocklist.Repository {
	t.Helper()
	store, err := bolt.New(filepath.Join(t.TempDir(), "bl.db"), &clock.MockClock{CurrentTime: now})
	require.NoError(t, err)
	cache, err := lru.New(64)
	require.NoError(t, err)
	repo, err := blocklist.NewRepository(blocklist.Options{
		Store:   store,
		Cache:   cache,
		Factory: bloom.NewFactory(),
		Logger:  log.NewNoopLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func blocked(t *testing.T, name string) domain.BlockedZone {
	t.Helper()
	z, err := domain.NewBlockedZone(name, "test", now)
	require.NoError(t, err)
	return z
}

func TestNewRepository_RequiresParts(t *testing.T) {
	_, err := blocklist.NewRepository(blocklist.Options{})
	assert.Error(t, err)
}

func TestRepository_AddDecideRemove(t *testing.T) {
	repo := newRepo(t)

	assert.False(t, repo.Decide("ads.example.com").Blocked)

	require.NoError(t, repo.Add(blocked(t, "Ads.Example.com.")))
	assert.ErrorIs(t, repo.Add(blocked(t, "ads.example.com")), domain.ErrAlreadyExists)

	d := repo.Decide("ads.example.com")
	assert.True(t, d.Blocked)
	assert.Equal(t, "ads.example.com", d.MatchedRule)
	assert.Equal(t, "test", d.Source)

	d = repo.Decide("x.y.ads.example.com.")
	assert.True(t, d.Blocked)
	assert.Equal(t, "ads.example.com", d.MatchedRule)

	assert.False(t, repo.Decide("example.com").Blocked)

	ok, err := repo.Contains("ads.example.com")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Contains("x.ads.example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Remove("ads.example.com"))
	assert.False(t, repo.Decide("x.y.ads.example.com").Blocked)
	assert.ErrorIs(t, repo.Remove("ads.example.com"), domain.ErrNotFound)
}

func TestRepository_AddInvalidatesCachedNegatives(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Add(blocked(t, "other.test")))

	assert.False(t, repo.Decide("a.b.test").Blocked)
	require.NoError(t, repo.Add(blocked(t, "b.test")))
	assert.True(t, repo.Decide("a.b.test").Blocked)
}

func TestRepository_AddAllAndList(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Add(blocked(t, "b.test")))

	added, err := repo.AddAll([]domain.BlockedZone{blocked(t, "a.test"), blocked(t, "b.test"), blocked(t, "c.test")})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	names, err := repo.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.test", "b.test", "c.test"}, names)

	list, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.True(t, repo.Decide("www.c.test").Blocked)
}

func TestRepository_ReplaceAll(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.AddAll([]domain.BlockedZone{blocked(t, "a.test"), blocked(t, "b.test")})
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceAll([]domain.BlockedZone{blocked(t, "c.test")}))
	names, err := repo.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"c.test"}, names)
	assert.False(t, repo.Decide("a.test").Blocked)
	assert.True(t, repo.Decide("c.test").Blocked)
}

func TestRepository_AddValidates(t *testing.T) {
	repo := newRepo(t)
	err := repo.Add(domain.BlockedZone{Name: "a.test"})
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestRepository_Stats(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, repo.Add(blocked(t, "a.test")))

	repo.Decide("a.test")
	repo.Decide("a.test")

	s := repo.Stats()
	assert.Equal(t, uint64(1), s.Store.Domains)
	assert.Equal(t, uint64(1), s.Cache.Hits)
	assert.Equal(t, uint64(1), s.Cache.Misses)
	assert.Equal(t, 64, s.Cache.Capacity)
}

type failingStore struct {
	blocklist.Store
}

func (failingStore) List() ([]domain.BlockedZone, error) { return []domain.BlockedZone{}, nil }
func (failingStore) FirstMatch(string) (domain.BlockedZone, bool, error) {
	return domain.BlockedZone{}, false, errors.New("disk on fire")
}

func TestRepository_StoreErrorAllows(t *testing.T) {
	cache, err := lru.New(0)
	require.NoError(t, err)
	// a filter that says "maybe" for everything forces the store lookup
	repo, err := blocklist.NewRepository(blocklist.Options{
		Store:   failingStore{},
		Cache:   cache,
		Factory: alwaysMaybe{},
		Logger:  log.NewNoopLogger(),
	})
	require.NoError(t, err)
	assert.False(t, repo.Decide("a.test").Blocked)
}

type alwaysMaybe struct{}

func (alwaysMaybe) New(uint64, float64) blocklist.BloomFilter { return alwaysMaybe{} }
func (alwaysMaybe) Add([]byte)                                {}
func (alwaysMaybe) MightContain([]byte) bool                  { return true }
