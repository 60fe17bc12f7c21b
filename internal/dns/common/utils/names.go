package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ErrInvalidName is returned when a string cannot be used as a DNS name.
var ErrInvalidName = errors.New("invalid domain name")

// CanonicalDNSName returns a DNS name lowercased, trimmed of surrounding whitespace
// and without trailing dots. This is the form used for keys and comparisons;
// BIND text wants Fqdn instead.
func CanonicalDNSName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}

// Fqdn returns the canonical name with exactly one trailing dot.
func Fqdn(name string) string {
	return dns.Fqdn(CanonicalDNSName(name))
}

// NormalizeZoneName converts a user supplied name (possibly internationalized)
// to its canonical ASCII form and checks it is a syntactically valid domain.
func NormalizeZoneName(name string) (string, error) {
	canon := CanonicalDNSName(name)
	if canon == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidName)
	}
	ascii, err := idna.Lookup.ToASCII(canon)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidName, name, err)
	}
	if strings.ContainsAny(ascii, " \t\"{};/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if _, ok := dns.IsDomainName(ascii); !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return ascii, nil
}

// ParentDomains returns name followed by each of its parents, closest first.
// "a.b.example.com" yields a.b.example.com, b.example.com, example.com, com.
func ParentDomains(name string) []string {
	name = CanonicalDNSName(name)
	if name == "" {
		return nil
	}
	out := []string{name}
	for {
		idx := strings.IndexByte(name, '.')
		if idx < 0 {
			return out
		}
		name = name[idx+1:]
		out = append(out, name)
	}
}

// IsPublicSuffix reports whether name is itself a public suffix such as "com" or "co.uk".
func IsPublicSuffix(name string) bool {
	name = CanonicalDNSName(name)
	suffix, icann := publicsuffix.PublicSuffix(name)
	return suffix == name && (icann || !strings.Contains(name, "."))
}
