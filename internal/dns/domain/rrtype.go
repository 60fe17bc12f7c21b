package domain

import (
	"fmt"
	"strings"
)

// RRType is a DNS resource record type code as assigned by IANA.
type RRType uint16

const (
	RRTypeA     RRType = 1  // A - IPv4 address
	RRTypeNS    RRType = 2  // NS - Name server
	RRTypeCNAME RRType = 5  // CNAME - Canonical name
	RRTypeSOA   RRType = 6  // SOA - Start of authority
	RRTypePTR   RRType = 12 // PTR - Pointer
	RRTypeMX    RRType = 15 // MX - Mail exchange
	RRTypeTXT   RRType = 16 // TXT - Text
	RRTypeAAAA  RRType = 28 // AAAA - IPv6 address
	RRTypeSRV   RRType = 33 // SRV - Service
)

// ManagedRRTypes lists the record types that can be read and edited through the zone API,
// in presentation order.
var ManagedRRTypes = []RRType{
	RRTypeA, RRTypeAAAA, RRTypeCNAME, RRTypeMX, RRTypeTXT, RRTypeNS, RRTypePTR, RRTypeSRV,
}

// IsManaged reports whether records of this type are exposed as Records.
// SOA is known but never managed: the engine owns it.
func (t RRType) IsManaged() bool {
	switch t {
	case RRTypeA, RRTypeAAAA, RRTypeCNAME, RRTypeMX, RRTypeTXT, RRTypeNS, RRTypePTR, RRTypeSRV:
		return true
	default:
		return false
	}
}

// String returns the mnemonic, or "UNKNOWN(<code>)" for anything not listed above.
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	case RRTypeNS:
		return "NS"
	case RRTypeCNAME:
		return "CNAME"
	case RRTypeSOA:
		return "SOA"
	case RRTypePTR:
		return "PTR"
	case RRTypeMX:
		return "MX"
	case RRTypeTXT:
		return "TXT"
	case RRTypeAAAA:
		return "AAAA"
	case RRTypeSRV:
		return "SRV"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}

// RRTypeFromString maps an exact upper-case mnemonic to its RRType, or 0.
// Zone text is matched case-sensitively, the same way BIND files written by this tool look.
func RRTypeFromString(s string) RRType {
	switch s {
	case "A":
		return RRTypeA
	case "NS":
		return RRTypeNS
	case "CNAME":
		return RRTypeCNAME
	case "SOA":
		return RRTypeSOA
	case "PTR":
		return RRTypePTR
	case "MX":
		return RRTypeMX
	case "TXT":
		return RRTypeTXT
	case "AAAA":
		return RRTypeAAAA
	case "SRV":
		return RRTypeSRV
	default:
		return 0
	}
}

// MarshalText encodes the type as its mnemonic for JSON and YAML.
func (t RRType) MarshalText() ([]byte, error) {
	if RRTypeFromString(t.String()) == 0 {
		return nil, fmt.Errorf("cannot marshal record type %d", uint16(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts a mnemonic in any letter case.
func (t *RRType) UnmarshalText(b []byte) error {
	v := RRTypeFromString(strings.ToUpper(strings.TrimSpace(string(b))))
	if v == 0 {
		return fmt.Errorf("unsupported record type %q", string(b))
	}
	*t = v
	return nil
}
