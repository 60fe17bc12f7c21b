package zonefile

import "github.com/haukened/bindmgr/internal/dns/domain"

type token struct {
	text       string
	start, end int
}

// nextToken scans the master file token starting at or after pos. Comments
// run from ';' to end of line; parentheses are tokens of their own.
func nextToken(s string, pos int) (token, bool) {
	i := pos
	for i < len(s) {
		switch c := s[i]; {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == ';':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case c == '(' || c == ')':
			return token{text: s[i : i+1], start: i, end: i + 1}, true
		case c == '"':
			j := i + 1
			for j < len(s) && s[j] != '"' {
				if s[j] == '\\' {
					j++
				}
				j++
			}
			if j < len(s) {
				j++
			}
			return token{text: s[i:min(j, len(s))], start: i, end: min(j, len(s))}, true
		default:
			j := i
			for j < len(s) {
				c := s[j]
				if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';' || c == '(' || c == ')' {
					break
				}
				j++
			}
			return token{text: s[i:j], start: i, end: j}, true
		}
	}
	return token{}, false
}

// locateSerial finds the serial field of the first SOA record in content.
// The SOA may be written on one line or spread over a parenthesized group.
func locateSerial(content string) (token, bool) {
	pos := 0
	for {
		tok, ok := nextToken(content, pos)
		if !ok {
			return token{}, false
		}
		pos = tok.end
		if tok.text == "SOA" {
			break
		}
	}
	// MNAME, RNAME, SERIAL
	fields := 0
	for {
		tok, ok := nextToken(content, pos)
		if !ok {
			return token{}, false
		}
		pos = tok.end
		if tok.text == "(" || tok.text == ")" {
			continue
		}
		fields++
		if fields == 3 {
			if !isDigits(tok.text) {
				return token{}, false
			}
			return tok, true
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ReadSerial returns the SOA serial of zone file content, or "" when none is found.
func ReadSerial(content string) string {
	tok, ok := locateSerial(content)
	if !ok {
		return ""
	}
	return tok.text
}

// bumpSerial replaces the SOA serial in content with its successor.
// Content without a recognizable serial is returned unchanged.
func (e *Engine) bumpSerial(content string) string {
	tok, ok := locateSerial(content)
	if !ok {
		e.logger.Warn(nil, "zone has no recognizable SOA serial, leaving it unchanged")
		return content
	}
	next := domain.NextSerial(tok.text, e.clock.Now())
	return content[:tok.start] + next + content[tok.end:]
}
