package zonefile

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// Create writes the skeleton file for zone and returns its path.
// It fails with AlreadyExists when the file is already present.
func (e *Engine) Create(zone, adminEmail string, ttl uint32) (string, error) {
	const op = "create zone file"
	path := e.Path(zone)

	exists, err := e.Exists(zone)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.AlreadyExists(op, "zone %s already exists", zone)
	}

	content := ZoneSkeleton(zone, adminEmail, ttl, domain.SerialStamp(e.clock.Now()))
	if err := utils.WriteAtomic(path, []byte(content)); err != nil {
		return "", domain.Wrap(domain.KindIOFailure, op, err)
	}
	e.logger.Info(map[string]any{"zone": zone, "file": path}, "created zone file")
	return path, nil
}

// Remove deletes the zone file. Removing a missing file succeeds.
func (e *Engine) Remove(zone string) error {
	if err := e.RemoveFile(domain.ZoneFileName(zone)); err != nil {
		return err
	}
	e.forget(zone)
	e.logger.Info(map[string]any{"zone": zone}, "removed zone file")
	return nil
}

// Records parses the zone file and returns its records in file order.
func (e *Engine) Records(zone string) ([]domain.Record, error) {
	path := e.Path(zone)
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("list records", "zone %s does not exist", zone)
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindIOFailure, "list records", err)
	}

	stamp := stampOf(fi)
	if e.cache != nil {
		if recs, ok := e.cache.Get(zone, stamp); ok {
			return recs, nil
		}
	}

	content, err := e.read(zone)
	if err != nil {
		return nil, err
	}
	recs := ParseRecords(content)
	if e.cache != nil {
		e.cache.Put(zone, stamp, recs)
	}
	return recs, nil
}

// RecordsInFile parses an arbitrary zone file, bypassing the cache.
// Relative paths resolve against the zones directory.
func (e *Engine) RecordsInFile(file string) ([]domain.Record, error) {
	data, err := os.ReadFile(e.Resolve(file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("read zone file", "%s does not exist", file)
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindIOFailure, "read zone file", err)
	}
	return ParseRecords(string(data)), nil
}

// ParseRecords returns every line of content that parses as a record, numbered
// by position.
func ParseRecords(content string) []domain.Record {
	var recs []domain.Record
	for line := range strings.Lines(content) {
		rec, ok := domain.ParseRecordLine(line)
		if !ok {
			continue
		}
		rec.Ordinal = len(recs)
		recs = append(recs, rec)
	}
	return recs
}

// Serial returns the SOA serial of zone, or "" when the file has none.
func (e *Engine) Serial(zone string) (string, error) {
	content, err := e.read(zone)
	if err != nil {
		return "", err
	}
	return ReadSerial(content), nil
}

// AddRecord bumps the serial and appends rec. The returned record carries its ordinal.
func (e *Engine) AddRecord(zone string, rec domain.Record) (domain.Record, error) {
	content, err := e.read(zone)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Ordinal = len(ParseRecords(content))
	content = e.appendRecord(content, rec)
	if err := e.write(zone, content); err != nil {
		return domain.Record{}, err
	}
	e.logger.Info(map[string]any{"zone": zone, "name": rec.Name, "type": rec.Type.String()}, "added record")
	return rec, nil
}

// DeleteRecord removes the record at ordinal and bumps the serial.
//
// The line removed is the first record line that contains the target's name,
// type and value as substrings. When another record's text contains all three,
// that earlier line is removed instead.
func (e *Engine) DeleteRecord(zone string, ordinal int) (domain.Record, error) {
	content, err := e.read(zone)
	if err != nil {
		return domain.Record{}, err
	}
	target, content, err := e.deleteRecord(zone, content, ordinal)
	if err != nil {
		return domain.Record{}, err
	}
	if err := e.write(zone, content); err != nil {
		return domain.Record{}, err
	}
	e.logger.Info(map[string]any{"zone": zone, "id": ordinal, "name": target.Name, "type": target.Type.String()}, "deleted record")
	return target, nil
}

// UpdateRecord deletes the record at ordinal and appends rec in its place at the
// end of the file. The serial advances twice and rec gets a new ordinal.
func (e *Engine) UpdateRecord(zone string, ordinal int, rec domain.Record) (domain.Record, error) {
	content, err := e.read(zone)
	if err != nil {
		return domain.Record{}, err
	}
	_, content, err = e.deleteRecord(zone, content, ordinal)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Ordinal = len(ParseRecords(content))
	content = e.appendRecord(content, rec)
	if err := e.write(zone, content); err != nil {
		return domain.Record{}, err
	}
	e.logger.Info(map[string]any{"zone": zone, "id": ordinal, "new_id": rec.Ordinal}, "updated record")
	return rec, nil
}

func (e *Engine) deleteRecord(zone, content string, ordinal int) (domain.Record, string, error) {
	const op = "delete record"
	recs := ParseRecords(content)
	if ordinal < 0 || ordinal >= len(recs) {
		return domain.Record{}, "", domain.NotFound(op, "record %d not found in zone %s", ordinal, zone)
	}
	target := recs[ordinal]

	var b strings.Builder
	removed := false
	for line := range strings.Lines(content) {
		if !removed {
			if _, ok := domain.ParseRecordLine(line); ok && target.MatchesLine(line) {
				removed = true
				continue
			}
		}
		b.WriteString(line)
	}
	return target, e.bumpSerial(b.String()), nil
}

func (e *Engine) appendRecord(content string, rec domain.Record) string {
	content = e.bumpSerial(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + rec.Format()
}

func (e *Engine) read(zone string) (string, error) {
	data, err := e.ReadFile(domain.ZoneFileName(zone))
	if domain.KindOf(err) == domain.KindNotFound {
		return "", domain.NotFound("read zone", "zone %s does not exist", zone)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (e *Engine) write(zone, content string) error {
	e.forget(zone)
	return e.WriteFile(domain.ZoneFileName(zone), []byte(content))
}

func (e *Engine) forget(zone string) {
	if e.cache != nil {
		e.cache.RemoveZone(zone)
	}
}
