// Package nullroute blocks domains by registering them as authoritative zones
// served from a shared file that answers 0.0.0.0 for every name.
package nullroute

import (
	"errors"
	"path/filepath"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
)

// FileName is the shared zone file in the zones directory.
const FileName = "db.null"

// Content is written to FileName the first time a domain is null-routed.
const Content = `$TTL 86400
@       IN      SOA     localhost. root.localhost. (
                        1           ; Serial
                        3600        ; Refresh
                        1800        ; Retry
                        604800      ; Expire
                        86400 )     ; Minimum TTL
        IN      NS      localhost.
@       IN      A       0.0.0.0
*       IN      A       0.0.0.0
`

// Files is the subset of the zone file engine used here.
type Files interface {
	FileExists(base string) (bool, error)
	WriteFile(base string, data []byte) error
	Resolve(file string) string
}

var _ Files = (*zonefile.Engine)(nil)

// Router adds and removes null-route zone registrations.
type Router struct {
	files  Files
	logger log.Logger
}

// New returns a Router writing through files.
func New(files Files, logger log.Logger) (*Router, error) {
	if files == nil {
		return nil, errors.New("nullroute: files must be set")
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Router{files: files, logger: logger}, nil
}

func isNullFile(file string) bool {
	return filepath.Base(file) == FileName
}

// List returns the null-routed domains registered in local.
func (r *Router) List(local *namedconf.Document) []string {
	out := []string{}
	for _, z := range namedconf.Zones(local) {
		if isNullFile(z.File) {
			out = append(out, utils.CanonicalDNSName(z.Name))
		}
	}
	return out
}

// Contains reports whether name is null-routed.
func (r *Router) Contains(local *namedconf.Document, name string) bool {
	st := namedconf.FindZone(local, name)
	return st != nil && st.Child("file") != nil && isNullFile(st.Child("file").Name())
}

// Add registers name against the null file, creating the file when needed.
// A zone of that name that is registered otherwise is an AlreadyExists error.
func (r *Router) Add(local *namedconf.Document, name string) error {
	const op = "null route"
	ok, err := r.files.FileExists(FileName)
	if err != nil {
		return err
	}
	if !ok {
		if err := r.files.WriteFile(FileName, []byte(Content)); err != nil {
			return err
		}
		r.logger.Info(map[string]any{"file": FileName}, "created null zone file")
	}
	block := namedconf.ZoneBlock{
		Name: utils.CanonicalDNSName(name),
		Type: namedconf.ZoneTypeMaster,
		File: r.files.Resolve(FileName),
	}
	if err := namedconf.AddZone(local, block); err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	return nil
}

// Remove drops the null-route registration of name. Zones served from other
// files are left alone and reported as NotFound.
func (r *Router) Remove(local *namedconf.Document, name string) error {
	const op = "remove null route"
	if !r.Contains(local, name) {
		return domain.NotFound(op, "%s is not null-routed", name)
	}
	if _, err := namedconf.RemoveZone(local, name); err != nil {
		return err
	}
	return nil
}
