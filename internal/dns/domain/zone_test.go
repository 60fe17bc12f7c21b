package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdminMailbox(t *testing.T) {
	tests := []struct {
		zone, email, want string
	}{
		{"example.org", "", "admin.example.org."},
		{"example.org", "hostmaster@example.org", "hostmaster.example.org."},
		{"example.org", "dns.example.org.", "dns.example.org."},
		{"example.org", "  ", "admin.example.org."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AdminMailbox(tt.zone, tt.email))
	}
}

func TestZoneFileName(t *testing.T) {
	assert.Equal(t, "db.example.org", ZoneFileName("example.org"))
}

func TestCountRecords(t *testing.T) {
	records := []Record{
		{Name: "@", Type: RRTypeNS, Value: "ns1.example.org."},
		{Name: "ns1", Type: RRTypeA, Value: "127.0.0.1"},
		{Name: "www", Type: RRTypeCNAME, Value: "ns1"},
	}
	assert.Equal(t, 2, CountRecords(records))
	assert.Equal(t, 0, CountRecords(nil))
}
