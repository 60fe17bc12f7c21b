package domain

import "strings"

// DefaultZoneTTL is the $TTL written into new zone files when none is given.
const DefaultZoneTTL uint32 = 86400

// ZoneFilePrefix prefixes every zone file name in the zones directory.
const ZoneFilePrefix = "db."

// Zone is a registered zone as seen through the registration config.
type Zone struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	File        string `json:"file" yaml:"file"`
	RecordCount int    `json:"record_count" yaml:"record_count"`
	Serial      string `json:"serial,omitempty" yaml:"serial,omitempty"`
}

// ZoneFileName returns the base name of the file holding zone.
func ZoneFileName(zone string) string {
	return ZoneFilePrefix + zone
}

// AdminMailbox renders the SOA RNAME for a zone. An empty email yields
// admin.<zone>.; an address like hostmaster@example.org becomes hostmaster.example.org.
func AdminMailbox(zone, email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		email = "admin." + zone
	}
	email = strings.ReplaceAll(email, "@", ".")
	if !strings.HasSuffix(email, ".") {
		email += "."
	}
	return email
}

// CountRecords returns the record count shown in zone listings. Name server
// records are part of the zone scaffolding and are not counted.
func CountRecords(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Type != RRTypeNS {
			n++
		}
	}
	return n
}
