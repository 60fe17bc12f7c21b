package manager

import (
	"context"
	"io"
	"slices"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
)

const (
	sourceAPI        = "api"
	sourceConfig     = "config"
	sourcePolicyZone = "rpz"
	sourceNullRoute  = "null-route"
)

// BlockRequest is the input of BlockZone and NullRoute.
type BlockRequest struct {
	Domain string `json:"domain" yaml:"domain" validate:"required,zonename"`
	Source string `json:"source,omitempty" yaml:"source,omitempty" validate:"omitempty,max=128"`
}

// ImportResult reports how many domains a list held and how many were new.
type ImportResult struct {
	Parsed int `json:"parsed"`
	Added  int `json:"added"`
}

func (m *Manager) blockTarget(op, raw string) (string, error) {
	name, err := m.zoneName(op, raw)
	if err != nil {
		return "", err
	}
	if utils.IsPublicSuffix(name) {
		return "", domain.Malformed(op, "%s is a public suffix and cannot be blocked", name)
	}
	return name, nil
}

// applyPolicy rebuilds the policy zone from the blocked set and saves both
// config files. Callers hold the write lock.
func (m *Manager) applyPolicy() error {
	names, err := m.blocked.Names()
	if err != nil {
		return err
	}
	options, err := m.options.Load()
	if err != nil {
		return err
	}
	local, err := m.local.Load()
	if err != nil {
		return err
	}
	if err := m.policy.Apply(names, options, local); err != nil {
		return err
	}
	if err := m.options.Save(options); err != nil {
		return err
	}
	return m.local.Save(local)
}

// ListBlockedZones returns the RPZ blocked domains followed by the null routes,
// each sorted by name.
func (m *Manager) ListBlockedZones() ([]domain.BlockedZone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out, err := m.blocked.List()
	if err != nil {
		return nil, err
	}
	local, err := m.local.Load()
	if err != nil {
		return nil, err
	}
	for _, name := range m.nullRouted(local) {
		out = append(out, domain.BlockedZone{
			Name:      name,
			Mechanism: domain.MechanismNullRoute,
			Source:    sourceNullRoute,
		})
	}
	if out == nil {
		out = []domain.BlockedZone{}
	}
	return out, nil
}

// BlockZone adds a domain to the RPZ set and regenerates the policy zone.
func (m *Manager) BlockZone(ctx context.Context, req BlockRequest) (domain.BlockedZone, error) {
	const op = "block domain"
	if err := m.checkStruct(op, req); err != nil {
		return domain.BlockedZone{}, err
	}
	name, err := m.blockTarget(op, req.Domain)
	if err != nil {
		return domain.BlockedZone{}, err
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = sourceAPI
	}
	z, err := domain.NewBlockedZone(name, source, m.clock.Now())
	if err != nil {
		return domain.BlockedZone{}, err
	}

	err = m.mutate(ctx, func() error {
		if err := m.blocked.Add(z); err != nil {
			return err
		}
		if err := m.applyPolicy(); err != nil {
			if rbErr := m.blocked.Remove(name); rbErr != nil {
				m.logger.Error(map[string]any{"domain": name, "error": rbErr}, "could not roll back blocked domain")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.BlockedZone{}, err
	}
	m.logger.Info(map[string]any{"domain": name, "source": source}, "domain blocked")
	return z, nil
}

// UnblockZone removes a domain from every blocking mechanism that holds it.
func (m *Manager) UnblockZone(ctx context.Context, raw string) error {
	const op = "unblock domain"
	name, err := m.zoneName(op, raw)
	if err != nil {
		return err
	}
	err = m.mutate(ctx, func() error {
		blocked, err := m.blocked.Contains(name)
		if err != nil {
			return err
		}
		local, err := m.local.Load()
		if err != nil {
			return err
		}
		routed := m.nullRoutes.Contains(local, name)
		if !blocked && !routed {
			return domain.NotFound(op, "%s is not blocked", name)
		}
		if routed {
			if err := m.nullRoutes.Remove(local, name); err != nil {
				return err
			}
			if err := m.local.Save(local); err != nil {
				return err
			}
		}
		if blocked {
			if err := m.blocked.Remove(name); err != nil {
				return err
			}
			return m.applyPolicy()
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info(map[string]any{"domain": name}, "domain unblocked")
	return nil
}

// ImportBlocklist adds every domain of a hosts file or plain list to the RPZ
// set. Domains already present keep their original source.
func (m *Manager) ImportBlocklist(ctx context.Context, r io.Reader, format parsers.Format, source string) (ImportResult, error) {
	const op = "import blocklist"
	source = strings.TrimSpace(source)
	if source == "" {
		return ImportResult{}, domain.Malformed(op, "source is required")
	}
	zones, err := parsers.Parse(r, format, source, m.logger, m.clock.Now())
	if err != nil {
		return ImportResult{}, err
	}
	res := ImportResult{Parsed: len(zones)}
	if len(zones) == 0 {
		return res, nil
	}
	err = m.mutate(ctx, func() error {
		added, err := m.blocked.AddAll(zones)
		if err != nil {
			return err
		}
		res.Added = added
		if added == 0 {
			return nil
		}
		return m.applyPolicy()
	})
	if err != nil {
		return ImportResult{}, err
	}
	m.logger.Info(map[string]any{"source": source, "parsed": res.Parsed, "added": res.Added}, "blocklist imported")
	return res, nil
}

// CheckBlocked reports whether name is blocked by the RPZ set or falls inside a
// null-routed zone.
func (m *Manager) CheckBlocked(raw string) (domain.BlockDecision, error) {
	name, err := m.zoneName("check blocked", raw)
	if err != nil {
		return domain.EmptyDecision(), err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if d := m.blocked.Decide(name); d.Blocked {
		return d, nil
	}
	local, err := m.local.Load()
	if err != nil {
		return domain.EmptyDecision(), err
	}
	for _, parent := range utils.ParentDomains(name) {
		if m.nullRoutes.Contains(local, parent) {
			return domain.BlockDecision{Blocked: true, MatchedRule: parent, Source: sourceNullRoute}, nil
		}
	}
	return domain.EmptyDecision(), nil
}

// BlocklistStats returns the blocked set's store and cache counters.
func (m *Manager) BlocklistStats() blocklist.Stats {
	return m.blocked.Stats()
}

// NullRoute answers a domain authoritatively with 0.0.0.0.
func (m *Manager) NullRoute(ctx context.Context, req BlockRequest) error {
	const op = "null route"
	if err := m.checkStruct(op, req); err != nil {
		return err
	}
	name, err := m.blockTarget(op, req.Domain)
	if err != nil {
		return err
	}
	err = m.mutate(ctx, func() error {
		local, err := m.local.Load()
		if err != nil {
			return err
		}
		if err := m.nullRoutes.Add(local, name); err != nil {
			return err
		}
		return m.local.Save(local)
	})
	if err != nil {
		return err
	}
	m.logger.Info(map[string]any{"domain": name}, "domain null-routed")
	return nil
}

// RemoveNullRoute drops a null route. Zones served from their own file are
// NotFound.
func (m *Manager) RemoveNullRoute(ctx context.Context, raw string) error {
	const op = "remove null route"
	name, err := m.zoneName(op, raw)
	if err != nil {
		return err
	}
	return m.mutate(ctx, func() error {
		local, err := m.local.Load()
		if err != nil {
			return err
		}
		if err := m.nullRoutes.Remove(local, name); err != nil {
			return err
		}
		return m.local.Save(local)
	})
}

// nullRouted lists the null-routed domains. Callers hold a lock.
func (m *Manager) nullRouted(local *namedconf.Document) []string {
	routes := m.nullRoutes.List(local)
	slices.Sort(routes)
	return routes
}
