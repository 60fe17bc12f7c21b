package zonefile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// Stamp identifies one version of a file on disk.
type Stamp struct {
	ModUnixNano int64
	Size        int64
}

// RecordCache stores parsed record lists between reads of an unchanged file.
type RecordCache interface {
	Get(zone string, stamp Stamp) ([]domain.Record, bool)
	Put(zone string, stamp Stamp, records []domain.Record)
	RemoveZone(zone string)
}

// Options configures an Engine.
type Options struct {
	// Dir is the directory holding db.<zone> files.
	Dir    string
	Clock  clock.Clock
	Cache  RecordCache
	Logger log.Logger
}

// Engine reads and rewrites zone files in a single directory.
// It does no locking of its own; callers serialize mutations.
type Engine struct {
	dir    string
	clock  clock.Clock
	cache  RecordCache
	logger log.Logger
}

// New validates opts and returns an Engine.
func New(opts Options) (*Engine, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("zone directory must be set")
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	return &Engine{
		dir:    filepath.Clean(opts.Dir),
		clock:  opts.Clock,
		cache:  opts.Cache,
		logger: opts.Logger,
	}, nil
}

// Dir returns the zones directory.
func (e *Engine) Dir() string { return e.dir }

// Path returns the absolute file path for zone.
func (e *Engine) Path(zone string) string {
	return filepath.Join(e.dir, domain.ZoneFileName(zone))
}

// Resolve turns a file path from a zone statement into a filesystem path.
// Relative paths are taken relative to the zones directory.
func (e *Engine) Resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(e.dir, file)
}

// Exists reports whether the zone file is present.
func (e *Engine) Exists(zone string) (bool, error) {
	return e.FileExists(domain.ZoneFileName(zone))
}

// FileExists reports whether base exists inside the zones directory.
func (e *Engine) FileExists(base string) (bool, error) {
	_, err := os.Stat(filepath.Join(e.dir, base))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, domain.Wrap(domain.KindIOFailure, "stat "+base, err)
	}
}

// ReadFile returns the content of base inside the zones directory.
func (e *Engine) ReadFile(base string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(e.dir, base))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NotFound("read "+base, "file does not exist")
	}
	if err != nil {
		return nil, domain.Wrap(domain.KindIOFailure, "read "+base, err)
	}
	return data, nil
}

// WriteFile replaces base inside the zones directory.
func (e *Engine) WriteFile(base string, data []byte) error {
	if err := utils.WriteAtomic(filepath.Join(e.dir, base), data); err != nil {
		return domain.Wrap(domain.KindIOFailure, "write "+base, err)
	}
	return nil
}

// RemoveFile deletes base inside the zones directory. A missing file is not an error.
func (e *Engine) RemoveFile(base string) error {
	err := os.Remove(filepath.Join(e.dir, base))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.Wrap(domain.KindIOFailure, "remove "+base, err)
	}
	return nil
}

func stampOf(fi fs.FileInfo) Stamp {
	return Stamp{ModUnixNano: fi.ModTime().UnixNano(), Size: fi.Size()}
}
