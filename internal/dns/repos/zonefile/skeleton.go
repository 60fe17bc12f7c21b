package zonefile

import (
	"fmt"

	"github.com/haukened/bindmgr/internal/dns/domain"
)

const skeleton = `;
; Zone file for %[1]s
;
$TTL %[2]d
@       IN      SOA     ns1.%[1]s. %[3]s (
                        %[4]s    ; Serial
                        3600        ; Refresh
                        1800        ; Retry
                        604800      ; Expire
                        86400 )     ; Minimum TTL

; Name servers
@       IN      NS      ns1.%[1]s.

; Default A record for name server
ns1     IN      A       127.0.0.1
`

// ZoneSkeleton is the content Create writes for a new zone: SOA, one name
// server and its glue record.
func ZoneSkeleton(zone, adminEmail string, ttl uint32, serial string) string {
	if ttl == 0 {
		ttl = domain.DefaultZoneTTL
	}
	return fmt.Sprintf(skeleton, zone, ttl, domain.AdminMailbox(zone, adminEmail), serial)
}
