package rpz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const optionsConf = `options {
    directory "/var/cache/bind";
    recursion yes;
};
`

const localConf = `// local zones
zone "example.org" {
    type master;
    file "/etc/bind/zones/db.example.org";
    allow-update { none; };
};
`

func newGenerator(t *testing.T) (*Generator, *zonefile.Engine, *clock.MockClock) {
	t.Helper()
	clk := &clock.MockClock{CurrentTime: time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)}
	files, err := zonefile.New(zonefile.Options{Dir: t.TempDir(), Clock: clk, Logger: log.NewNoopLogger()})
	require.NoError(t, err)
	g, err := New(Options{Files: files, Clock: clk, Logger: log.NewNoopLogger()})
	require.NoError(t, err)
	return g, files, clk
}

func docs(t *testing.T) (*namedconf.Document, *namedconf.Document) {
	t.Helper()
	opts, err := namedconf.Parse(optionsConf)
	require.NoError(t, err)
	local, err := namedconf.Parse(localConf)
	require.NoError(t, err)
	return opts, local
}

func TestNew_RequiresFiles(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	got := Render([]string{"Ads.Example.com.", "tracker.test", "ads.example.com"}, "2025080109")
	assert.Contains(t, got, "2025080109    ; Serial")
	assert.Contains(t, got, "; Blocked domains\nads.example.com CNAME .\n*.ads.example.com CNAME .\ntracker.test CNAME .\n*.tracker.test CNAME .\n")
}

func TestApply_BlockThenUnblockRestoresFiles(t *testing.T) {
	g, files, _ := newGenerator(t)
	opts, local := docs(t)

	require.NoError(t, g.Apply([]string{"ads.example.com"}, opts, local))

	data, err := os.ReadFile(filepath.Join(files.Dir(), FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ads.example.com CNAME .\n*.ads.example.com CNAME .\n")
	assert.Equal(t, "2025080109", zonefile.ReadSerial(string(data)))

	assert.Equal(t, []string{ZoneName}, namedconf.ResponsePolicyZones(opts))
	zones := namedconf.Zones(local)
	require.Len(t, zones, 2)
	assert.Equal(t, ZoneName, zones[1].Name)
	assert.Equal(t, []string{"none"}, zones[1].AllowQuery)
	assert.Equal(t, filepath.Join(files.Dir(), FileName), zones[1].File)
	assert.Contains(t, local.String(), "\n"+Marker+"\nzone \"rpz.blocked\" {")

	require.NoError(t, g.Apply(nil, opts, local))

	_, err = os.Stat(filepath.Join(files.Dir(), FileName))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, optionsConf, opts.String())
	assert.Equal(t, localConf, local.String())
}

func TestApply_UnblockRestoresLocalWithoutFinalNewline(t *testing.T) {
	g, _, _ := newGenerator(t)
	opts, err := namedconf.Parse(optionsConf)
	require.NoError(t, err)
	orig := strings.TrimSuffix(localConf, "\n")
	local, err := namedconf.Parse(orig)
	require.NoError(t, err)

	require.NoError(t, g.Apply([]string{"ads.example.com"}, opts, local))
	assert.True(t, namedconf.HasZone(local, ZoneName))

	require.NoError(t, g.Apply(nil, opts, local))
	assert.Equal(t, orig, local.String())
	assert.Equal(t, optionsConf, opts.String())
}

func TestApply_SerialAdvances(t *testing.T) {
	g, files, clk := newGenerator(t)
	opts, local := docs(t)

	require.NoError(t, g.Apply([]string{"a.test"}, opts, local))
	require.NoError(t, g.Apply([]string{"a.test", "b.test"}, opts, local))

	data, err := files.ReadFile(FileName)
	require.NoError(t, err)
	assert.Equal(t, "2025080110", zonefile.ReadSerial(string(data)))

	clk.Advance(24 * time.Hour)
	require.NoError(t, g.Apply([]string{"b.test"}, opts, local))
	data, err = files.ReadFile(FileName)
	require.NoError(t, err)
	assert.Equal(t, "2025080209", zonefile.ReadSerial(string(data)))

	assert.Len(t, namedconf.ResponsePolicyZones(opts), 1)
	assert.Len(t, namedconf.Zones(local), 2)
}

func TestApply_KeepsExistingRegistration(t *testing.T) {
	g, _, _ := newGenerator(t)
	opts, _ := docs(t)
	local, err := namedconf.Parse("zone \"rpz.blocked\" { type master; file \"custom.rpz\"; };\n")
	require.NoError(t, err)

	require.NoError(t, g.Apply([]string{"a.test"}, opts, local))
	zones := namedconf.Zones(local)
	require.Len(t, zones, 1)
	assert.Equal(t, "custom.rpz", zones[0].File)
}

func TestCurrent(t *testing.T) {
	g, _, _ := newGenerator(t)
	opts, local := docs(t)

	got, err := g.Current()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, g.Apply([]string{"b.test", "a.test"}, opts, local))
	got, err = g.Current()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.test", "b.test"}, got)
}

func TestParseDomains(t *testing.T) {
	text := `$TTL 60
@ IN SOA localhost. root.localhost. ( 1 3600 1800 604800 60 )
  IN NS localhost.
; ads.comment.test CNAME .
ads.example.com CNAME .
*.ads.example.com CNAME .
Tracker.Test. IN CNAME . ; trailing
rewrite.test CNAME other.test.
`
	assert.Equal(t, []string{"ads.example.com", "tracker.test"}, ParseDomains(text))
}
