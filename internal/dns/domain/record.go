package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultRecordTTL applies when a record line carries no numeric TTL.
const DefaultRecordTTL uint32 = 3600

// Record is one resource record line of a zone file.
//
// Ordinal is the zero-based position of the line among the lines that parse as
// records. It is recomputed on every read, so it is only stable while the file
// is not edited.
type Record struct {
	Ordinal int    `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Type    RRType `json:"type" yaml:"type"`
	Value   string `json:"value" yaml:"value"`
	TTL     uint32 `json:"ttl" yaml:"ttl"`
}

// ParseRecordLine reads a single-line record of the form
//
//	name [ttl] IN type value...
//
// It rejects blank lines, comments, SOA lines (which may span several lines),
// lines with fewer than four tokens or without an IN token, and record types
// outside ManagedRRTypes. When IN is the first token the name is "@".
func ParseRecordLine(line string) (Record, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, ";") || strings.Contains(trimmed, "SOA") {
		return Record{}, false
	}
	parts := strings.Fields(trimmed)
	if len(parts) < 4 {
		return Record{}, false
	}
	in := -1
	for i, p := range parts {
		if p == "IN" {
			in = i
			break
		}
	}
	if in < 0 || in+2 >= len(parts) {
		return Record{}, false
	}

	rrtype := RRTypeFromString(parts[in+1])
	if !rrtype.IsManaged() {
		return Record{}, false
	}

	rec := Record{
		Name:  "@",
		Type:  rrtype,
		Value: strings.Join(parts[in+2:], " "),
		TTL:   DefaultRecordTTL,
	}
	if in > 0 {
		rec.Name = parts[0]
	}
	if in > 1 {
		if ttl, err := strconv.ParseUint(parts[in-1], 10, 32); err == nil && ttl > 0 {
			rec.TTL = uint32(ttl)
		}
	}
	return rec, true
}

// Format renders the record as a tab separated zone file line including the newline.
func (r Record) Format() string {
	return fmt.Sprintf("%s\t%d\tIN\t%s\t%s\n", r.Name, r.TTL, r.Type, r.Value)
}

// MatchesLine reports whether line textually contains the record's name, type and value.
// This is substring containment, so records whose fields are substrings of one
// another's are not distinguishable.
func (r Record) MatchesLine(line string) bool {
	return strings.Contains(line, r.Name) &&
		strings.Contains(line, r.Type.String()) &&
		strings.Contains(line, r.Value)
}

// Validate checks that the record can be written as a single zone file line.
func (r Record) Validate() error {
	const op = "validate record"
	switch {
	case r.Name == "":
		return Malformed(op, "name must not be empty")
	case strings.ContainsAny(r.Name, " \t\r\n;"):
		return Malformed(op, "name %q must be a single token", r.Name)
	case r.Name == "IN":
		return Malformed(op, "name must not be the class token IN")
	case strings.Contains(r.Name, "SOA") || strings.Contains(r.Value, "SOA"):
		return Malformed(op, "text containing SOA cannot be stored on a record line")
	case !r.Type.IsManaged():
		return Malformed(op, "record type %s is not supported", r.Type)
	case strings.TrimSpace(r.Value) == "":
		return Malformed(op, "value must not be empty")
	case strings.ContainsAny(r.Value, "\r\n"):
		return Malformed(op, "value must fit on one line")
	case strings.HasPrefix(strings.TrimSpace(r.Value), "("):
		return Malformed(op, "multi-line values are not supported")
	case r.TTL == 0:
		return Malformed(op, "ttl must be positive")
	}
	return nil
}

// Normalize fills the default TTL and collapses whitespace in the value, the way
// the record reads back after a write.
func (r Record) Normalize() Record {
	if r.TTL == 0 {
		r.TTL = DefaultRecordTTL
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Value = strings.Join(strings.Fields(r.Value), " ")
	return r
}
