package domain

import (
	"fmt"
	"strings"
	"time"
)

// BlockMechanism identifies how a blocked domain is enforced by BIND.
type BlockMechanism uint8

const (
	// MechanismRPZ rewrites answers through the response policy zone.
	MechanismRPZ BlockMechanism = iota
	// MechanismNullRoute answers authoritatively with 0.0.0.0 from db.null.
	MechanismNullRoute
)

func (m BlockMechanism) String() string {
	switch m {
	case MechanismRPZ:
		return "rpz"
	case MechanismNullRoute:
		return "null-route"
	default:
		return fmt.Sprintf("BlockMechanism(%d)", m)
	}
}

func (m BlockMechanism) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *BlockMechanism) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "rpz":
		*m = MechanismRPZ
	case "null-route":
		*m = MechanismNullRoute
	default:
		return fmt.Errorf("unsupported block mechanism: %q", string(b))
	}
	return nil
}

// BlockedZone is a domain that resolves to nothing for clients of the server.
//
// Name is canonical, without a trailing dot. Blocking a name blocks all of its
// subdomains too.
type BlockedZone struct {
	Name      string         `json:"name" yaml:"name"`
	Mechanism BlockMechanism `json:"mechanism" yaml:"mechanism"`
	Source    string         `json:"source,omitempty" yaml:"source,omitempty"`
	AddedAt   time.Time      `json:"added_at,omitzero" yaml:"added_at,omitempty"`
}

// NewBlockedZone builds an RPZ entry and validates it.
func NewBlockedZone(name, source string, addedAt time.Time) (BlockedZone, error) {
	b := BlockedZone{
		Name:      strings.TrimSpace(name),
		Mechanism: MechanismRPZ,
		Source:    strings.TrimSpace(source),
		AddedAt:   addedAt,
	}
	if err := b.Validate(); err != nil {
		return BlockedZone{}, err
	}
	return b, nil
}

func (b BlockedZone) Validate() error {
	const op = "validate blocked zone"
	if b.Name == "" {
		return Malformed(op, "name must not be empty")
	}
	if b.Source == "" {
		return Malformed(op, "source must not be empty")
	}
	if b.AddedAt.IsZero() {
		return Malformed(op, "added time must be set")
	}
	return nil
}

// BlockDecision is the outcome of checking a name against the blocked set.
type BlockDecision struct {
	Blocked     bool   `json:"blocked"`
	MatchedRule string `json:"matched,omitempty"` // blocked domain that covers the name
	Source      string `json:"source,omitempty"`
}

// EmptyDecision returns a not-blocked decision.
func EmptyDecision() BlockDecision { return BlockDecision{} }
