package parsers

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"time"

	logpkg "github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// ParsePlainList parses a newline-delimited list of domains. A leading "*."
// or "." is accepted and dropped.
//
// Behavior:
// - Supports comments starting with '#' (inline or whole-line)
// - Trims surrounding whitespace and removes trailing dots via CanonicalDNSName
// - Skips invalid names and public suffixes
// - De-duplicates by canonical name while preserving first-seen order
// - Each entry is attributed to the provided source and timestamped with now
func ParsePlainList(r io.Reader, source string, logger logpkg.Logger, now time.Time) ([]domain.BlockedZone, error) {
	scanner := bufio.NewScanner(r)

	seen := make(map[string]struct{})
	out := make([]domain.BlockedZone, 0, 256)
	logger.Debug(map[string]any{"source": source}, "parse_plain_list_start")
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := stripLineBOM(scanner.Text())

		if isEmpty, isComment := classifyLine(line); isEmpty || isComment {
			continue
		}
		s := strings.TrimSpace(stripInlineComment(line))
		name := normalizeDomainName(s)

		if !isValidFQDN(name) || utils.IsPublicSuffix(name) {
			logger.Debug(map[string]any{"line": lineNum, "raw": s, "name": name}, "skip_invalid_fqdn")
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}

		z, err := domain.NewBlockedZone(name, source, now)
		if err != nil {
			logger.Debug(map[string]any{"line": lineNum, "name": name, "error": err}, "skip_constructor_error")
			continue
		}
		out = append(out, z)
		seen[name] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		logger.Debug(map[string]any{"source": source, "error": err}, "parse_plain_list_scan_error")
		return nil, err
	}
	logger.Debug(map[string]any{"source": source, "count": len(out)}, "parse_plain_list_done")
	return out, nil
}

// Format names an import format.
type Format string

const (
	FormatAuto  Format = "auto"
	FormatHosts Format = "hosts"
	FormatPlain Format = "plain"
)

// Parse reads a blocklist in the given format. FormatAuto (or "") picks hosts
// format when the first content line starts with an IP address.
func Parse(r io.Reader, format Format, source string, logger logpkg.Logger, now time.Time) ([]domain.BlockedZone, error) {
	switch format {
	case FormatHosts:
		return ParseHostsFile(r, source, logger, now)
	case FormatPlain:
		return ParsePlainList(r, source, logger, now)
	case FormatAuto, "":
	default:
		return nil, domain.Malformed("parse blocklist", "unknown format %q", format)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	for line := range strings.Lines(string(data)) {
		if isEmpty, isComment := classifyLine(stripLineBOM(line)); isEmpty || isComment {
			continue
		}
		if looksLikeHostsLine(line) {
			return ParseHostsFile(bytes.NewReader(data), source, logger, now)
		}
		break
	}
	return ParsePlainList(bytes.NewReader(data), source, logger, now)
}
