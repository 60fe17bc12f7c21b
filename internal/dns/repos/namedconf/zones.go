package namedconf

import (
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// Zone types bindmgr writes or reads. ZoneTypePrimary is the name newer BIND
// releases use for master zones.
const (
	ZoneTypeMaster  = "master"
	ZoneTypePrimary = "primary"
	ZoneTypeForward = "forward"
)

// ZoneBlock is a zone registration statement.
type ZoneBlock struct {
	Name        string
	Type        string
	File        string
	Forwarders  []string
	AllowUpdate []string
	AllowQuery  []string
}

// MasterZone returns the registration written for zones created through bindmgr.
func MasterZone(name, file string) ZoneBlock {
	return ZoneBlock{Name: name, Type: ZoneTypeMaster, File: file, AllowUpdate: []string{"none"}}
}

// ForwardZone returns a conditional forwarder registration.
func ForwardZone(name string, forwarders []string) ZoneBlock {
	return ZoneBlock{Name: name, Type: ZoneTypeForward, Forwarders: forwarders}
}

// Render formats the block the way it is written to disk:
//
//	zone "example.org" {
//	    type master;
//	    file "/etc/bind/zones/db.example.org";
//	    allow-update { none; };
//	};
func (z ZoneBlock) Render() string {
	var b strings.Builder
	b.WriteString("zone " + Quote(z.Name) + " {\n")
	if z.Type != "" {
		b.WriteString(indentUnit + "type " + z.Type + ";\n")
	}
	if z.File != "" {
		b.WriteString(indentUnit + "file " + Quote(z.File) + ";\n")
	}
	if z.Type == ZoneTypeForward {
		b.WriteString(indentUnit + "forward only;\n")
	}
	writeList(&b, "forwarders", z.Forwarders)
	writeList(&b, "allow-update", z.AllowUpdate)
	writeList(&b, "allow-query", z.AllowQuery)
	b.WriteString("};\n")
	return b.String()
}

// IsPrimary reports whether the zone is served from a local master file.
func (z ZoneBlock) IsPrimary() bool {
	return z.Type == ZoneTypeMaster || z.Type == ZoneTypePrimary
}

func writeList(b *strings.Builder, keyword string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(indentUnit + keyword + " { ")
	for _, it := range items {
		b.WriteString(it + "; ")
	}
	b.WriteString("};\n")
}

func zoneFromStatement(st *Statement) ZoneBlock {
	z := ZoneBlock{Name: st.Name()}
	if c := st.Child("type"); c != nil {
		z.Type = c.Name()
	}
	if c := st.Child("file"); c != nil {
		z.File = c.Name()
	}
	if c := st.Child("forwarders"); c != nil {
		z.Forwarders = c.Items()
	}
	if c := st.Child("allow-update"); c != nil {
		z.AllowUpdate = c.Items()
	}
	if c := st.Child("allow-query"); c != nil {
		z.AllowQuery = c.Items()
	}
	return z
}

// Zones returns every top-level zone statement in document order.
func Zones(doc *Document) []ZoneBlock {
	var out []ZoneBlock
	for _, st := range doc.Find("zone") {
		out = append(out, zoneFromStatement(st))
	}
	return out
}

// FindZone returns the statement registering name, compared case-insensitively
// and ignoring a trailing dot.
func FindZone(doc *Document, name string) *Statement {
	want := utils.CanonicalDNSName(name)
	for _, st := range doc.Find("zone") {
		if utils.CanonicalDNSName(st.Name()) == want {
			return st
		}
	}
	return nil
}

// HasZone reports whether name is registered.
func HasZone(doc *Document, name string) bool {
	return FindZone(doc, name) != nil
}

// AddZone appends z at the end of the document, preceded by a blank line.
func AddZone(doc *Document, z ZoneBlock) error {
	const op = "add zone block"
	if strings.TrimSpace(z.Name) == "" {
		return domain.Malformed(op, "zone name must not be empty")
	}
	if HasZone(doc, z.Name) {
		return domain.AlreadyExists(op, "zone %s already exists in configuration", z.Name)
	}
	if err := doc.Append("\n" + z.Render()); err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	return nil
}

// RemoveZone deletes the registration of name together with the blank line
// AddZone wrote before it. It reports whether a statement was removed.
func RemoveZone(doc *Document, name string, leading ...string) (bool, error) {
	st := FindZone(doc, name)
	if st == nil {
		return false, nil
	}
	if len(leading) == 0 {
		leading = []string{""}
	}
	if err := doc.Remove(st, leading...); err != nil {
		return false, domain.Wrap(domain.KindMalformedInput, "remove zone block", err)
	}
	return true, nil
}
