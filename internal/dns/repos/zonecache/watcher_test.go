package zonecache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneFromPath(t *testing.T) {
	tests := []struct {
		path string
		zone string
		ok   bool
	}{
		{"/etc/bind/zones/db.example.org", "example.org", true},
		{"db.rpz.blocked", "rpz.blocked", true},
		{"/etc/bind/zones/.db.example.org.123.tmp", "", false},
		{"/etc/bind/zones/named.conf", "", false},
		{"/etc/bind/zones/db.", "", false},
	}
	for _, tt := range tests {
		zone, ok := zoneFromPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.zone, zone, tt.path)
	}
}

func TestWatcherHandle(t *testing.T) {
	zc, err := New(4)
	require.NoError(t, err)
	w := &Watcher{cache: zc, logger: log.NewNoopLogger()}

	zc.Put("example.org", zonefile.Stamp{}, records("www"))
	w.handle(fsnotify.Event{Name: "/z/db.example.org", Op: fsnotify.Chmod})
	assert.Len(t, zc.Zones(), 1, "chmod is ignored")

	w.handle(fsnotify.Event{Name: "/z/db.example.org", Op: fsnotify.Write})
	assert.Empty(t, zc.Zones())
}

func TestWatcherEvictsOnWrite(t *testing.T) {
	dir := t.TempDir()
	zc, err := New(4)
	require.NoError(t, err)
	w, err := NewWatcher(dir, zc, log.NewNoopLogger())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	zc.Put("example.org", zonefile.Stamp{}, records("www"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db.example.org"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool { return len(zc.Zones()) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewWatcher_MissingDir(t *testing.T) {
	zc, err := New(1)
	require.NoError(t, err)
	_, err = NewWatcher(filepath.Join(t.TempDir(), "missing"), zc, nil)
	assert.Error(t, err)
}
