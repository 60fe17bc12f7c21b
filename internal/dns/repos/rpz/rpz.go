// Package rpz renders the response policy zone that blocks domains and keeps
// its registration in the BIND configuration in step with the blocked set.
package rpz

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
)

const (
	// ZoneName is the policy zone referenced by the response-policy option.
	ZoneName = "rpz.blocked"
	// FileName is the zone file written into the zones directory.
	FileName = domain.ZoneFilePrefix + ZoneName
	// Marker is the comment line written above the zone registration.
	Marker = "// RPZ blocklist zone"
)

const header = `$TTL 60
@       IN      SOA     localhost. root.localhost. (
                        %s    ; Serial
                        3600        ; Refresh
                        1800        ; Retry
                        604800      ; Expire
                        60 )        ; Minimum TTL
        IN      NS      localhost.

; Blocked domains
`

// Files is the subset of the zone file engine the generator writes through.
type Files interface {
	ReadFile(base string) ([]byte, error)
	WriteFile(base string, data []byte) error
	RemoveFile(base string) error
	Resolve(file string) string
}

var _ Files = (*zonefile.Engine)(nil)

// Options configures a Generator.
type Options struct {
	Files  Files
	Clock  clock.Clock
	Logger log.Logger
}

// Generator rebuilds the policy zone from the complete blocked set.
type Generator struct {
	files  Files
	clock  clock.Clock
	logger log.Logger
}

// New returns a Generator.
func New(opts Options) (*Generator, error) {
	if opts.Files == nil {
		return nil, errors.New("rpz: files must be set")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Generator{files: opts.Files, clock: opts.Clock, logger: opts.Logger}, nil
}

// Render returns the policy zone for domains with the given serial. Domains
// are canonicalized, deduplicated and sorted.
func Render(domains []string, serial string) string {
	var b strings.Builder
	fmt.Fprintf(&b, header, serial)
	for _, d := range normalize(domains) {
		b.WriteString(d + " CNAME .\n")
		b.WriteString("*." + d + " CNAME .\n")
	}
	return b.String()
}

func normalize(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = utils.CanonicalDNSName(d); d != "" {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Apply makes the policy zone, the response-policy option in options and
// the registration in local reflect domains. An empty set removes all three.
// The documents are modified in memory; the caller saves them.
func (g *Generator) Apply(domains []string, options, local *namedconf.Document) error {
	const op = "apply rpz"
	domains = normalize(domains)
	if len(domains) == 0 {
		return g.clear(options, local)
	}

	serial := domain.SerialStamp(g.clock.Now())
	existing, err := g.files.ReadFile(FileName)
	switch {
	case err == nil:
		if old := zonefile.ReadSerial(string(existing)); old != "" {
			serial = domain.NextSerial(old, g.clock.Now())
		}
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Wrap(domain.KindIOFailure, op, err)
	}

	if err := g.files.WriteFile(FileName, []byte(Render(domains, serial))); err != nil {
		return domain.Wrap(domain.KindIOFailure, op, err)
	}
	if err := namedconf.SetResponsePolicy(options, ZoneName); err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	if !namedconf.HasZone(local, ZoneName) {
		block := namedconf.ZoneBlock{
			Name:       ZoneName,
			Type:       namedconf.ZoneTypeMaster,
			File:       g.files.Resolve(FileName),
			AllowQuery: []string{"none"},
		}
		if err := local.Append("\n" + Marker + "\n" + block.Render()); err != nil {
			return domain.Wrap(domain.KindMalformedInput, op, err)
		}
	}
	g.logger.Info(map[string]any{"domains": len(domains), "serial": serial}, "rpz zone regenerated")
	return nil
}

func (g *Generator) clear(options, local *namedconf.Document) error {
	const op = "clear rpz"
	if err := g.files.RemoveFile(FileName); err != nil {
		return domain.Wrap(domain.KindIOFailure, op, err)
	}
	if _, err := namedconf.RemoveResponsePolicy(options); err != nil {
		return err
	}
	if _, err := namedconf.RemoveZone(local, ZoneName, "", Marker); err != nil {
		return err
	}
	g.logger.Info(nil, "rpz zone removed, no blocked domains left")
	return nil
}

// Current returns the domains in the policy zone on disk. A missing file is an
// empty set.
func (g *Generator) Current() ([]string, error) {
	data, err := g.files.ReadFile(FileName)
	if errors.Is(err, domain.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseDomains(string(data)), nil
}

// ParseDomains recovers the blocked domains from policy zone text. Wildcard
// owners and anything that is not a "CNAME ." rewrite are skipped.
func ParseDomains(text string) []string {
	var out []string
	for line := range strings.Lines(text) {
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		idx := slices.Index(fields, "CNAME")
		if idx < 1 || idx != len(fields)-2 || fields[idx+1] != "." {
			continue
		}
		owner := fields[0]
		if owner == "@" || strings.HasPrefix(owner, "*.") {
			continue
		}
		out = append(out, utils.CanonicalDNSName(owner))
	}
	return normalize(out)
}
