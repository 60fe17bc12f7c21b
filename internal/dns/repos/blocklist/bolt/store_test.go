package bolt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
)

var t0 = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) blocklist.Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "bl.db"), &clock.MockClock{CurrentTime: t0})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func zone(name, source string) domain.BlockedZone {
	return domain.BlockedZone{Name: name, Mechanism: domain.MechanismRPZ, Source: source, AddedAt: t0}
}

func TestBoltStore_PutGetDelete(t *testing.T) {
	st := newStore(t)

	if _, ok, err := st.Get("ads.example.com"); err != nil || ok {
		t.Fatalf("expected empty miss, got ok=%v err=%v", ok, err)
	}

	added, err := st.Put(zone("ads.example.com", "api"), zone("tracker.test", "import"))
	if err != nil || added != 2 {
		t.Fatalf("Put: added=%d err=%v", added, err)
	}

	z, ok, err := st.Get("ads.example.com")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if z.Source != "api" || !z.AddedAt.Equal(t0) || z.Mechanism != domain.MechanismRPZ {
		t.Fatalf("unexpected entry: %+v", z)
	}

	// second put of an existing name keeps the first source
	added, err = st.Put(zone("ads.example.com", "other"))
	if err != nil || added != 0 {
		t.Fatalf("duplicate Put: added=%d err=%v", added, err)
	}
	z, _, _ = st.Get("ads.example.com")
	if z.Source != "api" {
		t.Fatalf("source overwritten: %q", z.Source)
	}

	found, err := st.Delete("ads.example.com")
	if err != nil || !found {
		t.Fatalf("Delete: found=%v err=%v", found, err)
	}
	found, err = st.Delete("ads.example.com")
	if err != nil || found {
		t.Fatalf("second Delete: found=%v err=%v", found, err)
	}
}

func TestBoltStore_FirstMatch(t *testing.T) {
	st := newStore(t)
	if _, err := st.Put(zone("example.net", "t"), zone("a.example.com", "t")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"a.example.com", "a.example.com", true},
		{"x.a.example.com", "a.example.com", true},
		{"sub.example.net", "example.net", true},
		{"example.net", "example.net", true},
		{"example.com", "", false},
		{"nope.tld", "", false},
	}
	for _, tt := range tests {
		z, ok, err := st.FirstMatch(tt.query)
		if err != nil || ok != tt.ok || z.Name != tt.want {
			t.Errorf("FirstMatch(%q) = %q, %v, %v; want %q, %v", tt.query, z.Name, ok, err, tt.want, tt.ok)
		}
	}
}

func TestBoltStore_ListOrdered(t *testing.T) {
	st := newStore(t)
	if _, err := st.Put(zone("b.test", "t"), zone("a.test", "t"), zone("c.test", "t")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].Name != "a.test" || got[1].Name != "b.test" || got[2].Name != "c.test" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestBoltStore_ReplaceAll(t *testing.T) {
	st := newStore(t)
	if _, err := st.Put(zone("a.test", "first"), zone("b.test", "first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.ReplaceAll([]domain.BlockedZone{zone("b.test", "second"), zone("c.test", "second")}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	got, _ := st.List()
	if len(got) != 2 || got[0].Name != "b.test" || got[1].Name != "c.test" {
		t.Fatalf("unexpected set: %+v", got)
	}
	if got[0].Source != "first" || got[1].Source != "second" {
		t.Fatalf("sources not preserved: %+v", got)
	}

	if err := st.ReplaceAll(nil); err != nil {
		t.Fatalf("ReplaceAll(nil): %v", err)
	}
	if got, _ := st.List(); len(got) != 0 {
		t.Fatalf("expected empty set, got %+v", got)
	}
}

func TestBoltStore_Stats(t *testing.T) {
	st := newStore(t)
	if s := st.Stats(); s.Domains != 0 || s.Version != 0 || s.UpdatedUnix != 0 {
		t.Fatalf("unexpected initial stats: %+v", s)
	}
	if _, err := st.Put(zone("a.test", "t")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := st.Delete("a.test"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Put(zone("b.test", "t")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s := st.Stats()
	if s.Domains != 1 || s.Version != 3 || s.UpdatedUnix != t0.Unix() {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestBoltStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bl.db")
	st, err := New(path, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := st.Put(zone("a.test", "t")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st, err = New(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st.Close()
	if _, ok, _ := st.Get("a.test"); !ok {
		t.Fatalf("entry lost across reopen")
	}
}

func TestNew_BadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "bl.db"), nil)
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
