package lru

import (
	"testing"

	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
)

func TestDecisionCache_HitMissAndPut(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	d := domain.BlockDecision{Blocked: true, MatchedRule: "example.com", Source: "api"}

	if _, ok := c.Get("ads.example.com"); ok {
		t.Fatalf("expected miss before put")
	}
	c.Put("ads.example.com", d)

	got, ok := c.Get("ads.example.com")
	if !ok || got != d {
		t.Fatalf("unexpected get: ok=%v got=%+v", ok, got)
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Capacity != 2 || s.Size != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestDecisionCache_EvictionAndLen(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a.test", domain.BlockDecision{Blocked: true})
	c.Put("b.test", domain.BlockDecision{Blocked: true})
	c.Put("c.test", domain.BlockDecision{Blocked: true})
	if got := c.Len(); got != 2 {
		t.Fatalf("len=%d want=2 after eviction", got)
	}
	if _, ok := c.Get("a.test"); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
	if ev := c.Stats().Evictions; ev != 1 {
		t.Fatalf("evictions=%d want=1", ev)
	}
}

func TestDecisionCache_PurgeCountsEvictions(t *testing.T) {
	c, err := New(3)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a.test", domain.BlockDecision{})
	c.Put("b.test", domain.BlockDecision{})
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after purge")
	}
	if ev := c.Stats().Evictions; ev != 2 {
		t.Fatalf("evictions=%d want=2", ev)
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a.test", domain.BlockDecision{Blocked: true})
	if _, ok := c.Get("a.test"); ok {
		t.Fatalf("disabled cache must always miss")
	}
	c.Purge()
	if c.Len() != 0 || c.Stats() != (blocklist.CacheStats{}) {
		t.Fatalf("disabled cache must report nothing")
	}
}
