package manager

import (
	"context"

	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/gateways/probe"
	"github.com/haukened/bindmgr/internal/dns/gateways/reload"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
	"github.com/haukened/bindmgr/internal/dns/repos/nullroute"
	"github.com/haukened/bindmgr/internal/dns/repos/rpz"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
)

// ZoneFiles reads and edits the zone files in the zones directory.
type ZoneFiles interface {
	Create(zone, adminEmail string, ttl uint32) (string, error)
	Remove(zone string) error
	Records(zone string) ([]domain.Record, error)
	RecordsInFile(file string) ([]domain.Record, error)
	Serial(zone string) (string, error)
	AddRecord(zone string, rec domain.Record) (domain.Record, error)
	UpdateRecord(zone string, ordinal int, rec domain.Record) (domain.Record, error)
	DeleteRecord(zone string, ordinal int) (domain.Record, error)
	Check(zone string) (zonefile.CheckReport, error)
}

// PolicyZone regenerates the response policy zone from the blocked set.
type PolicyZone interface {
	Apply(domains []string, options, local *namedconf.Document) error
	Current() ([]string, error)
}

// NullRoutes manages zones answered from the null zone file.
type NullRoutes interface {
	List(local *namedconf.Document) []string
	Contains(local *namedconf.Document, name string) bool
	Add(local *namedconf.Document, name string) error
	Remove(local *namedconf.Document, name string) error
}

// Blocklist is the persistent set of RPZ blocked domains.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
	Contains(name string) (bool, error)
	List() ([]domain.BlockedZone, error)
	Names() ([]string, error)
	Add(z domain.BlockedZone) error
	AddAll(zones []domain.BlockedZone) (int, error)
	Remove(name string) error
	ReplaceAll(zones []domain.BlockedZone) error
	Stats() blocklist.Stats
}

// Reloader collects reload requests and applies them against BIND.
type Reloader interface {
	Mark()
	IsPending() bool
	Apply(ctx context.Context) error
	Force(ctx context.Context) error
	Status(ctx context.Context) string
}

// Prober checks that upstream resolvers answer.
type Prober interface {
	Check(ctx context.Context, servers ...string) []probe.Result
}

var (
	_ ZoneFiles  = (*zonefile.Engine)(nil)
	_ PolicyZone = (*rpz.Generator)(nil)
	_ NullRoutes = (*nullroute.Router)(nil)
	_ Blocklist  = (*blocklist.Repository)(nil)
	_ Reloader   = (*reload.Pending)(nil)
	_ Prober     = (*probe.Prober)(nil)
)
