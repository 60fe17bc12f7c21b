package manager

import (
	"context"
	"slices"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/gateways/probe"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
)

// ListForwarders returns the global forwarders in file order.
func (m *Manager) ListForwarders() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	options, err := m.options.Load()
	if err != nil {
		return nil, err
	}
	return namedconf.List(options, namedconf.KeyForwarders), nil
}

// AddForwarder appends ip to the global forwarders.
func (m *Manager) AddForwarder(ctx context.Context, ip string) error {
	const op = "add forwarder"
	ip = strings.TrimSpace(ip)
	if err := m.validate.Var(ip, "required,ip"); err != nil {
		return domain.Malformed(op, "%q is not an IP address", ip)
	}
	return m.editOptions(ctx, func(doc *namedconf.Document) error {
		return namedconf.AddListItem(doc, namedconf.KeyForwarders, ip)
	})
}

// RemoveForwarder drops ip from the global forwarders.
func (m *Manager) RemoveForwarder(ctx context.Context, ip string) error {
	ip = strings.TrimSpace(ip)
	return m.editOptions(ctx, func(doc *namedconf.Document) error {
		return namedconf.RemoveListItem(doc, namedconf.KeyForwarders, ip)
	})
}

// CheckForwarders queries every global and conditional forwarder once.
func (m *Manager) CheckForwarders(ctx context.Context) ([]probe.Result, error) {
	const op = "check forwarders"
	if m.probe == nil {
		return nil, domain.E(domain.KindExternalFailure, op, "no prober configured")
	}
	settings, err := m.Configuration()
	if err != nil {
		return nil, err
	}
	servers := settings.Forwarders
	for _, cf := range settings.ConditionalForwarders {
		for _, fwd := range cf.Forwarders {
			if !slices.Contains(servers, fwd) {
				servers = append(servers, fwd)
			}
		}
	}
	return m.probe.Check(ctx, servers...), nil
}

// Recursion returns whether recursion is on and who may use it.
func (m *Manager) Recursion() (domain.RecursionSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	options, err := m.options.Load()
	if err != nil {
		return domain.RecursionSettings{}, err
	}
	return recursionOf(options), nil
}

func recursionOf(options *namedconf.Document) domain.RecursionSettings {
	return domain.RecursionSettings{
		Enabled:         namedconf.Recursion(options),
		AllowedNetworks: namedconf.List(options, namedconf.KeyAllowRecursion),
	}
}

// SetRecursion turns recursion on or off.
func (m *Manager) SetRecursion(ctx context.Context, enabled bool) error {
	return m.editOptions(ctx, func(doc *namedconf.Document) error {
		return namedconf.SetRecursion(doc, enabled)
	})
}

// AddRecursionNetwork allows recursion for an address, prefix or ACL keyword.
func (m *Manager) AddRecursionNetwork(ctx context.Context, network string) error {
	const op = "add recursion network"
	network = strings.TrimSpace(network)
	if err := m.validate.Var(network, "required,bindacl"); err != nil {
		return domain.Malformed(op, "%q is not an address match element", network)
	}
	return m.editOptions(ctx, func(doc *namedconf.Document) error {
		return namedconf.AddListItem(doc, namedconf.KeyAllowRecursion, network)
	})
}

// RemoveRecursionNetwork drops an element from allow-recursion only.
func (m *Manager) RemoveRecursionNetwork(ctx context.Context, network string) error {
	network = strings.TrimSpace(network)
	return m.editOptions(ctx, func(doc *namedconf.Document) error {
		return namedconf.RemoveListItem(doc, namedconf.KeyAllowRecursion, network)
	})
}

func (m *Manager) editOptions(ctx context.Context, fn func(*namedconf.Document) error) error {
	return m.mutate(ctx, func() error {
		doc, err := m.options.Load()
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		return m.options.Save(doc)
	})
}

// Configuration reads the editable server settings as one document.
func (m *Manager) Configuration() (domain.ServerSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	options, err := m.options.Load()
	if err != nil {
		return domain.ServerSettings{}, err
	}
	mainDoc, err := m.main.Load()
	if err != nil {
		return domain.ServerSettings{}, err
	}
	blocked, err := m.blocked.Names()
	if err != nil {
		return domain.ServerSettings{}, err
	}
	if blocked == nil {
		blocked = []string{}
	}
	s := domain.ServerSettings{
		Recursion:             recursionOf(options),
		Forwarders:            namedconf.List(options, namedconf.KeyForwarders),
		ConditionalForwarders: namedconf.ConditionalForwarders(mainDoc),
		BlockedZones:          blocked,
	}
	s.MaxCacheSize, _ = namedconf.Scalar(options, namedconf.KeyMaxCacheSize)
	s.MaxCacheTTL, _ = namedconf.Scalar(options, namedconf.KeyMaxCacheTTL)
	return s, nil
}

// ReplaceConfiguration makes the server settings equal to s and reloads once.
// Blocked domains that stay in the set keep their source and timestamp.
func (m *Manager) ReplaceConfiguration(ctx context.Context, s domain.ServerSettings) error {
	const op = "replace configuration"
	if err := m.checkStruct(op, s); err != nil {
		return err
	}
	blocked, err := m.blockedSet(op, s.BlockedZones)
	if err != nil {
		return err
	}
	conditional := make([]domain.ConditionalForwarder, 0, len(s.ConditionalForwarders))
	for _, cf := range s.ConditionalForwarders {
		name, err := utils.NormalizeZoneName(cf.Zone)
		if err != nil {
			return domain.Wrap(domain.KindMalformedInput, op, err)
		}
		conditional = append(conditional, domain.ConditionalForwarder{Zone: name, Forwarders: cf.Forwarders})
	}

	err = m.mutate(ctx, func() error {
		options, err := m.options.Load()
		if err != nil {
			return err
		}
		mainDoc, err := m.main.Load()
		if err != nil {
			return err
		}
		local, err := m.local.Load()
		if err != nil {
			return err
		}
		if err := applySettings(options, s); err != nil {
			return domain.Wrap(domain.KindMalformedInput, op, err)
		}
		if err := namedconf.SetConditionalForwarders(mainDoc, conditional); err != nil {
			return err
		}
		if err := m.blocked.ReplaceAll(blocked); err != nil {
			return err
		}
		names, err := m.blocked.Names()
		if err != nil {
			return err
		}
		if err := m.policy.Apply(names, options, local); err != nil {
			return err
		}
		for _, save := range []struct {
			file namedconf.File
			doc  *namedconf.Document
		}{{m.options, options}, {m.main, mainDoc}, {m.local, local}} {
			if err := save.file.Save(save.doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info(map[string]any{
		"forwarders":  len(s.Forwarders),
		"conditional": len(conditional),
		"blocked":     len(blocked),
	}, "configuration replaced")
	return nil
}

func (m *Manager) blockedSet(op string, names []string) ([]domain.BlockedZone, error) {
	now := m.clock.Now()
	out := make([]domain.BlockedZone, 0, len(names))
	for _, raw := range names {
		name, err := m.blockTarget(op, raw)
		if err != nil {
			return nil, err
		}
		z, err := domain.NewBlockedZone(name, sourceConfig, now)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}

func applySettings(options *namedconf.Document, s domain.ServerSettings) error {
	if err := namedconf.SetRecursion(options, s.Recursion.Enabled); err != nil {
		return err
	}
	if err := namedconf.SetList(options, namedconf.KeyAllowRecursion, s.Recursion.AllowedNetworks); err != nil {
		return err
	}
	if err := namedconf.SetList(options, namedconf.KeyForwarders, s.Forwarders); err != nil {
		return err
	}
	if err := namedconf.SetScalar(options, namedconf.KeyMaxCacheSize, s.MaxCacheSize); err != nil {
		return err
	}
	return namedconf.SetScalar(options, namedconf.KeyMaxCacheTTL, s.MaxCacheTTL)
}
