package zonecache

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// Watcher evicts cache entries when zone files are edited outside the manager.
// Stamp checks already catch most edits; the watcher covers writes that land
// within the filesystem's timestamp granularity.
type Watcher struct {
	fs     *fsnotify.Watcher
	cache  *ZoneCache
	logger log.Logger
}

// NewWatcher starts watching dir for changes to db.* files.
func NewWatcher(dir string, cache *ZoneCache, logger log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if logger == nil {
		logger = log.GetLogger()
	}
	return &Watcher{fs: fw, cache: cache, logger: logger}, nil
}

// Run handles events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn(map[string]any{"error": err}, "zone watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	zone, ok := zoneFromPath(ev.Name)
	if !ok {
		return
	}
	w.cache.RemoveZone(zone)
	w.logger.Debug(map[string]any{"zone": zone, "op": ev.Op.String()}, "zone file changed on disk")
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func zoneFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	zone, ok := strings.CutPrefix(base, domain.ZoneFilePrefix)
	if !ok || zone == "" || strings.HasPrefix(zone, ".") {
		return "", false
	}
	return zone, true
}
