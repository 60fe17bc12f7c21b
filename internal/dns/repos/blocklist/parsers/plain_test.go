package parsers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(zs []domain.BlockedZone) []string {
	out := make([]string, 0, len(zs))
	for _, z := range zs {
		out = append(out, z.Name)
	}
	return out
}

func TestParsePlainList_Basics(t *testing.T) {
	input := "\uFEFFads.example.com\n" +
		"# comment\n" +
		"  Tracker.Example.org.  # inline\n" +
		"*.wild.example.net\n" +
		".dot.example.net\n" +
		"ads.example.com\n" +
		"localhost\n" +
		"com\n" +
		"user@example.com\n"
	now := time.Unix(1723550000, 0)

	got, err := ParsePlainList(strings.NewReader(input), "list", log.NewNoopLogger(), now)
	require.NoError(t, err)
	assert.Equal(t, []string{"ads.example.com", "tracker.example.org", "wild.example.net", "dot.example.net"}, names(got))
	for _, z := range got {
		assert.Equal(t, "list", z.Source)
		assert.True(t, z.AddedAt.Equal(now))
		assert.Equal(t, domain.MechanismRPZ, z.Mechanism)
	}
}

func TestParsePlainList_EmptyAndCommentsOnly(t *testing.T) {
	input := "\n# only comments\n   # another\n\n"
	got, err := ParsePlainList(bytes.NewBufferString(input), "s", log.NewNoopLogger(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePlainList_ConstructorErrorsAreSkipped(t *testing.T) {
	input := "example.com\n*.sub.example.com\n"

	got, err := ParsePlainList(bytes.NewBufferString(input), "", log.NewNoopLogger(), time.Unix(1723550000, 0))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = ParsePlainList(bytes.NewBufferString(input), "src", log.NewNoopLogger(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParsePlainList_ScannerError(t *testing.T) {
	big := bytes.Repeat([]byte{'a'}, 70000)
	got, err := ParsePlainList(bytes.NewReader(big), "src", log.NewNoopLogger(), time.Now())
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestParse_Formats(t *testing.T) {
	now := time.Unix(1723550000, 0)
	hosts := "# hosts\n0.0.0.0 ads.example.com\n"
	plain := "# plain\nads.example.com\n"

	tests := []struct {
		name   string
		input  string
		format Format
		want   []string
	}{
		{"auto detects hosts", hosts, FormatAuto, []string{"ads.example.com"}},
		{"auto detects plain", plain, "", []string{"ads.example.com"}},
		{"explicit hosts", hosts, FormatHosts, []string{"ads.example.com"}},
		{"hosts text read as plain", hosts, FormatPlain, []string{}},
		{"explicit plain", plain, FormatPlain, []string{"ads.example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input), tt.format, "src", log.NewNoopLogger(), now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}

	_, err := Parse(strings.NewReader(plain), "csv", "src", log.NewNoopLogger(), now)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}
