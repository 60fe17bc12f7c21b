package namedconf

import (
	"strings"

	"github.com/haukened/bindmgr/internal/dns/domain"
)

// ForwardersMarker heads the conditional forwarder zones in the main config.
const ForwardersMarker = "// Zone Forwarders"

// ConditionalForwarders returns every top-level zone of type forward.
func ConditionalForwarders(doc *Document) []domain.ConditionalForwarder {
	out := []domain.ConditionalForwarder{}
	for _, z := range Zones(doc) {
		if z.Type != ZoneTypeForward {
			continue
		}
		fwd := z.Forwarders
		if fwd == nil {
			fwd = []string{}
		}
		out = append(out, domain.ConditionalForwarder{Zone: z.Name, Forwarders: fwd})
	}
	return out
}

// SetConditionalForwarders replaces all forward zones with list. The new
// blocks are written after the marker line, which is added at the end of the
// document when missing and removed when list is empty.
func SetConditionalForwarders(doc *Document, list []domain.ConditionalForwarder) error {
	const op = "set conditional forwarders"
	for {
		var st *Statement
		for _, z := range doc.Find("zone") {
			if c := z.Child("type"); c != nil && c.Name() == ZoneTypeForward {
				st = z
				break
			}
		}
		if st == nil {
			break
		}
		if err := doc.Remove(st); err != nil {
			return domain.Wrap(domain.KindMalformedInput, op, err)
		}
	}

	if len(list) == 0 {
		_, err := doc.RemoveLine(ForwardersMarker, "")
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}

	var b strings.Builder
	for _, cf := range list {
		if len(cf.Forwarders) == 0 {
			return domain.Malformed(op, "zone %s has no forwarders", cf.Zone)
		}
		if HasZone(doc, cf.Zone) {
			return domain.AlreadyExists(op, "zone %s already exists in configuration", cf.Zone)
		}
		b.WriteString(ForwardZone(cf.Zone, cf.Forwarders).Render())
	}

	off, ok := doc.LineOffset(ForwardersMarker)
	if !ok {
		text := "\n" + ForwardersMarker + "\n"
		if src := doc.String(); src != "" && !strings.HasSuffix(src, "\n") {
			text = "\n" + text
		}
		return domain.Wrap(domain.KindMalformedInput, op, doc.Append(text+b.String()))
	}
	return domain.Wrap(domain.KindMalformedInput, op, doc.InsertAfterLine(off, b.String()))
}
