// Package manager implements zone, record, blocking and server setting
// operations over the BIND configuration files and zone files.
package manager

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
)

// Manager is the single entry point for every zone and server setting change.
// It serializes read-modify-write cycles on the config files and zone files
// and reloads BIND once per mutating call.
type Manager struct {
	mu sync.RWMutex

	zones      ZoneFiles
	policy     PolicyZone
	nullRoutes NullRoutes
	blocked    Blocklist
	reload     Reloader
	probe      Prober

	local   namedconf.File
	options namedconf.File
	main    namedconf.File

	clock    clock.Clock
	logger   log.Logger
	validate *validator.Validate
}

// Options wires a Manager. Every field except Probe, Clock and Logger is required.
type Options struct {
	Zones      ZoneFiles
	Policy     PolicyZone
	NullRoutes NullRoutes
	Blocklist  Blocklist
	Reload     Reloader
	Probe      Prober

	// Local holds the zone registrations (named.conf.local).
	Local namedconf.File
	// ServerOptions holds the options block (named.conf.options).
	ServerOptions namedconf.File
	// Main holds the conditional forwarders (named.conf).
	Main namedconf.File

	Clock  clock.Clock
	Logger log.Logger
}

// New validates opts and seeds the blocked set from the policy zone on disk
// when the set is empty.
func New(opts Options) (*Manager, error) {
	switch {
	case opts.Zones == nil:
		return nil, errors.New("manager: zone files are required")
	case opts.Policy == nil || opts.NullRoutes == nil || opts.Blocklist == nil:
		return nil, errors.New("manager: blocking components are required")
	case opts.Reload == nil:
		return nil, errors.New("manager: reloader is required")
	case opts.Local.Path == "" || opts.ServerOptions.Path == "" || opts.Main.Path == "":
		return nil, errors.New("manager: config file paths are required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	m := &Manager{
		zones:      opts.Zones,
		policy:     opts.Policy,
		nullRoutes: opts.NullRoutes,
		blocked:    opts.Blocklist,
		reload:     opts.Reload,
		probe:      opts.Probe,
		local:      opts.Local,
		options:    opts.ServerOptions,
		main:       opts.Main,
		clock:      opts.Clock,
		logger:     log.With(opts.Logger, map[string]any{"component": "manager"}),
		validate:   v,
	}
	if err := m.seedBlocklist(); err != nil {
		return nil, err
	}
	return m, nil
}

// seedBlocklist imports the domains of an existing policy zone, so a store
// created after the zone file was written starts out consistent with it.
func (m *Manager) seedBlocklist() error {
	names, err := m.blocked.Names()
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return nil
	}
	current, err := m.policy.Current()
	if err != nil {
		return err
	}
	if len(current) == 0 {
		return nil
	}
	now := m.clock.Now()
	zones := make([]domain.BlockedZone, 0, len(current))
	for _, name := range current {
		z, err := domain.NewBlockedZone(name, sourcePolicyZone, now)
		if err != nil {
			continue
		}
		zones = append(zones, z)
	}
	added, err := m.blocked.AddAll(zones)
	if err != nil {
		return err
	}
	m.logger.Info(map[string]any{"domains": added}, "seeded blocklist from policy zone")
	return nil
}

// mutate runs fn under the write lock and then applies a reload if fn succeeded.
// A failed reload is returned, but the edit it follows stays on disk.
func (m *Manager) mutate(ctx context.Context, fn func() error) error {
	m.mu.Lock()
	err := fn()
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.reload.Mark()
	return m.reload.Apply(ctx)
}

// Health reports the service and BIND state.
func (m *Manager) Health(ctx context.Context) domain.Health {
	return domain.Health{
		Status:        "healthy",
		Server:        m.reload.Status(ctx),
		ReloadPending: m.reload.IsPending(),
	}
}

// Reload asks BIND to reload regardless of pending changes.
func (m *Manager) Reload(ctx context.Context) error {
	return m.reload.Force(ctx)
}

// ApplyPending retries a reload left pending by an earlier failure.
func (m *Manager) ApplyPending(ctx context.Context) error {
	return m.reload.Apply(ctx)
}
