package zonefile

import (
	"strings"

	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/miekg/dns"
)

// CheckReport summarizes a full master-file parse of a zone.
type CheckReport struct {
	Zone    string `json:"zone"`
	Serial  uint32 `json:"serial"`
	Records int    `json:"records"`
	// Hidden counts records a full parser sees but the line-oriented record
	// reader does not, such as multi-line or $ORIGIN-relative entries.
	Hidden int `json:"hidden"`
}

// Check parses the whole zone file with a complete master-file parser so edits
// made by hand can be validated before BIND reloads them.
func (e *Engine) Check(zone string) (CheckReport, error) {
	const op = "check zone"
	content, err := e.read(zone)
	if err != nil {
		return CheckReport{}, err
	}

	report := CheckReport{Zone: zone}
	zp := dns.NewZoneParser(strings.NewReader(content), dns.Fqdn(zone), e.Path(zone))
	total := 0
	for rr, ok := zp.Next(); ok; rr, ok = zp.Next() {
		if soa, isSOA := rr.(*dns.SOA); isSOA {
			if report.Serial == 0 {
				report.Serial = soa.Serial
			}
			continue
		}
		total++
	}
	if err := zp.Err(); err != nil {
		return CheckReport{}, domain.Malformed(op, "%s: %v", zone, err)
	}
	if report.Serial == 0 {
		return CheckReport{}, domain.Malformed(op, "%s: no SOA record", zone)
	}

	report.Records = total
	if visible := len(ParseRecords(content)); total > visible {
		report.Hidden = total - visible
	}
	return report, nil
}
