package manager

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
	"github.com/haukened/bindmgr/internal/dns/repos/nullroute"
	"github.com/haukened/bindmgr/internal/dns/repos/rpz"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
)

// CreateZoneRequest is the input of CreateZone.
type CreateZoneRequest struct {
	Name       string `json:"zone_name" yaml:"zone_name" validate:"required,zonename"`
	AdminEmail string `json:"admin_email,omitempty" yaml:"admin_email,omitempty" validate:"omitempty,mailbox"`
	TTL        uint32 `json:"ttl,omitempty" yaml:"ttl,omitempty" validate:"omitempty,gte=60"`
}

// RecordRequest is the input of AddRecord and UpdateRecord.
type RecordRequest struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Type  string `json:"type" yaml:"type" validate:"required,rrtype"`
	Value string `json:"value" yaml:"value" validate:"required"`
	TTL   uint32 `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

func (r RecordRequest) record() domain.Record {
	return domain.Record{
		Name:  r.Name,
		Type:  domain.RRTypeFromString(strings.ToUpper(strings.TrimSpace(r.Type))),
		Value: r.Value,
		TTL:   r.TTL,
	}.Normalize()
}

// internalZone reports zones that belong to a blocking mechanism rather than
// to the user.
func internalZone(z namedconf.ZoneBlock) bool {
	return utils.CanonicalDNSName(z.Name) == rpz.ZoneName || filepath.Base(z.File) == nullroute.FileName
}

// ListZones returns the registered master zones. A zone whose file is missing is
// listed with no records; the policy zone and null routes are listed as blocked
// zones instead.
func (m *Manager) ListZones() ([]domain.Zone, error) {
	const op = "list zones"
	m.mu.RLock()
	defer m.mu.RUnlock()

	local, err := m.local.Load()
	if err != nil {
		return nil, err
	}
	zones := []domain.Zone{}
	for _, z := range namedconf.Zones(local) {
		if !z.IsPrimary() || z.File == "" || internalZone(z) {
			continue
		}
		name := utils.CanonicalDNSName(z.Name)
		zone := domain.Zone{Name: name, Type: z.Type, File: z.File}
		recs, err := m.zones.RecordsInFile(z.File)
		switch {
		case err == nil:
			zone.RecordCount = domain.CountRecords(recs)
			if filepath.Base(z.File) == domain.ZoneFileName(name) {
				zone.Serial, _ = m.zones.Serial(name)
			}
		case domain.KindOf(err) == domain.KindNotFound:
			m.logger.Warn(map[string]any{"zone": name, "file": z.File}, "registered zone has no file")
		default:
			return nil, domain.Wrap(domain.KindIOFailure, op, err)
		}
		zones = append(zones, zone)
	}
	return zones, nil
}

// CreateZone writes the zone skeleton and registers it. The file is removed
// again when the registration cannot be saved.
func (m *Manager) CreateZone(ctx context.Context, req CreateZoneRequest) (domain.Zone, error) {
	const op = "create zone"
	if err := m.checkStruct(op, req); err != nil {
		return domain.Zone{}, err
	}
	name, err := utils.NormalizeZoneName(req.Name)
	if err != nil {
		return domain.Zone{}, domain.Wrap(domain.KindMalformedInput, op, err)
	}

	var zone domain.Zone
	err = m.mutate(ctx, func() error {
		local, err := m.local.Load()
		if err != nil {
			return err
		}
		if namedconf.HasZone(local, name) {
			return domain.AlreadyExists(op, "zone %s is already registered", name)
		}
		path, err := m.zones.Create(name, req.AdminEmail, req.TTL)
		if err != nil {
			return err
		}
		if err := m.register(local, name, path); err != nil {
			if rmErr := m.zones.Remove(name); rmErr != nil {
				m.logger.Error(map[string]any{"zone": name, "error": rmErr}, "could not remove zone file after failed registration")
			}
			return err
		}
		zone = domain.Zone{Name: name, Type: namedconf.ZoneTypeMaster, File: path}
		if recs, err := m.zones.Records(name); err == nil {
			zone.RecordCount = domain.CountRecords(recs)
		}
		zone.Serial, _ = m.zones.Serial(name)
		return nil
	})
	if err != nil {
		return domain.Zone{}, err
	}
	m.logger.Info(map[string]any{"zone": name}, "zone created")
	return zone, nil
}

func (m *Manager) register(local *namedconf.Document, name, path string) error {
	if err := namedconf.AddZone(local, namedconf.MasterZone(name, path)); err != nil {
		return err
	}
	return m.local.Save(local)
}

// DeleteZone removes the zone file and its registration. Either may already be
// gone.
func (m *Manager) DeleteZone(ctx context.Context, zone string) error {
	const op = "delete zone"
	name, err := m.zoneName(op, zone)
	if err != nil {
		return err
	}
	if name == rpz.ZoneName {
		return domain.Malformed(op, "%s is managed through blocked zones", name)
	}
	err = m.mutate(ctx, func() error {
		if err := m.zones.Remove(name); err != nil {
			return err
		}
		local, err := m.local.Load()
		if err != nil {
			return err
		}
		removed, err := namedconf.RemoveZone(local, name)
		if err != nil {
			return err
		}
		if removed {
			return m.local.Save(local)
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.logger.Info(map[string]any{"zone": name}, "zone deleted")
	return nil
}

// ListRecords returns the records of zone with their current ordinals.
func (m *Manager) ListRecords(zone string) ([]domain.Record, error) {
	name, err := m.zoneName("list records", zone)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs, err := m.zones.Records(name)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs, nil
}

func (m *Manager) recordInput(op, zone string, req RecordRequest) (string, domain.Record, error) {
	name, err := m.zoneName(op, zone)
	if err != nil {
		return "", domain.Record{}, err
	}
	if err := m.checkStruct(op, req); err != nil {
		return "", domain.Record{}, err
	}
	rec := req.record()
	if err := rec.Validate(); err != nil {
		return "", domain.Record{}, err
	}
	return name, rec, nil
}

// AddRecord appends a record to zone. The returned record carries its ordinal.
func (m *Manager) AddRecord(ctx context.Context, zone string, req RecordRequest) (domain.Record, error) {
	name, rec, err := m.recordInput("add record", zone, req)
	if err != nil {
		return domain.Record{}, err
	}
	err = m.mutate(ctx, func() error {
		rec, err = m.zones.AddRecord(name, rec)
		return err
	})
	return rec, err
}

// UpdateRecord replaces the record at id. The replacement is appended, so it
// gets the highest ordinal.
func (m *Manager) UpdateRecord(ctx context.Context, zone string, id int, req RecordRequest) (domain.Record, error) {
	name, rec, err := m.recordInput("update record", zone, req)
	if err != nil {
		return domain.Record{}, err
	}
	err = m.mutate(ctx, func() error {
		rec, err = m.zones.UpdateRecord(name, id, rec)
		return err
	})
	return rec, err
}

// DeleteRecord removes the record at id and returns it.
func (m *Manager) DeleteRecord(ctx context.Context, zone string, id int) (domain.Record, error) {
	name, err := m.zoneName("delete record", zone)
	if err != nil {
		return domain.Record{}, err
	}
	var rec domain.Record
	err = m.mutate(ctx, func() error {
		rec, err = m.zones.DeleteRecord(name, id)
		return err
	})
	return rec, err
}

// CheckZone runs a full master-file parse over the zone.
func (m *Manager) CheckZone(zone string) (zonefile.CheckReport, error) {
	name, err := m.zoneName("check zone", zone)
	if err != nil {
		return zonefile.CheckReport{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.zones.Check(name)
}
