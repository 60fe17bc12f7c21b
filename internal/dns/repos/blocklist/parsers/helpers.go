package parsers

import (
	"net/netip"
	"strings"
	"unicode"

	"github.com/haukened/bindmgr/internal/dns/common/utils"
)

// isValidFQDN checks whether the provided string is a valid Fully Qualified Domain Name (FQDN).
// It enforces the following rules:
//   - The total length must not exceed 255 characters.
//   - The name must contain at least two labels (separated by dots).
//   - Each label must be between 1 and 63 characters long.
//   - The first label must start with a letter, number, or wildcard character.
//   - Labels hold only letters, digits, '-', '_' and '*'.
func isValidFQDN(name string) bool {
	if len(name) > 255 {
		return false
	}
	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) > 63 || len(label) == 0 {
			return false
		}
		for _, r := range label {
			if !isAlphaNumeric(r) && !isWildcard(r) && r != '-' && r != '_' {
				return false
			}
		}
	}
	runes := []rune(labels[0])
	if !isAlphaNumeric(runes[0]) && !isWildcard(runes[0]) {
		return false
	}
	return true
}

// normalizeDomainName trims whitespace, drops a leading "*." or "." and
// canonicalizes the rest. Blocking a domain always covers its subdomains, so
// the wildcard marker carries no extra meaning.
func normalizeDomainName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "*.")
	name = strings.TrimPrefix(name, ".")
	return utils.CanonicalDNSName(name)
}

func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isWildcard(r rune) bool {
	return r == '*'
}

// classifyLine reports whether line is blank or a whole-line '#' comment.
func classifyLine(line string) (isEmpty, isComment bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, false
	}
	return false, strings.HasPrefix(trimmed, "#")
}

func stripInlineComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx]
	}
	return line
}

func stripLineBOM(line string) string {
	return strings.TrimPrefix(line, "\uFEFF")
}

// looksLikeHostsLine reports whether the first field of line is an IP address.
func looksLikeHostsLine(line string) bool {
	fields := strings.Fields(stripInlineComment(stripLineBOM(line)))
	if len(fields) < 2 {
		return false
	}
	_, err := netip.ParseAddr(fields[0])
	return err == nil
}
