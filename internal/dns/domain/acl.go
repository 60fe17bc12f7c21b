package domain

import (
	"net/netip"
	"strings"
)

// aclKeywords are the built-in address match list names BIND understands.
var aclKeywords = map[string]struct{}{
	"any":       {},
	"none":      {},
	"localhost": {},
	"localnets": {},
}

// IsForwarderAddress reports whether s is a bare IPv4 or IPv6 address.
func IsForwarderAddress(s string) bool {
	addr, err := netip.ParseAddr(s)
	return err == nil && addr.Zone() == ""
}

// IsACLElement reports whether s can appear in an address match list such as
// allow-recursion: an address, a CIDR prefix or a built-in keyword, optionally
// negated with "!".
func IsACLElement(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "!")
	if s == "" {
		return false
	}
	if _, ok := aclKeywords[strings.ToLower(s)]; ok {
		return true
	}
	if IsForwarderAddress(s) {
		return true
	}
	_, err := netip.ParsePrefix(s)
	return err == nil
}
