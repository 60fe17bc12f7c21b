package namedconf

import (
	"fmt"
	"strings"
)

type tokKind uint8

const (
	tokWord tokKind = iota
	tokString
	tokOpen
	tokClose
	tokSemi
)

type token struct {
	kind       tokKind
	text       string
	start, end int
}

// lex splits named.conf text into words, quoted strings and the punctuation
// { } ;. Comments in all three styles (// # /* */) are skipped.
func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '#' || (c == '/' && i+1 < len(src) && src[i+1] == '/'):
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("unterminated comment at offset %d", i)
			}
			i += end + 4
		case c == '{':
			toks = append(toks, token{kind: tokOpen, text: "{", start: i, end: i + 1})
			i++
		case c == '}':
			toks = append(toks, token{kind: tokClose, text: "}", start: i, end: i + 1})
			i++
		case c == ';':
			toks = append(toks, token{kind: tokSemi, text: ";", start: i, end: i + 1})
			i++
		case c == '"':
			j := i + 1
			for j < len(src) && src[j] != '"' {
				if src[j] == '\\' {
					j++
				}
				j++
			}
			if j >= len(src) {
				return nil, fmt.Errorf("unterminated string at offset %d", i)
			}
			toks = append(toks, token{kind: tokString, text: src[i : j+1], start: i, end: j + 1})
			i = j + 1
		default:
			j := i
			for j < len(src) && !isDelim(src, j) {
				j++
			}
			toks = append(toks, token{kind: tokWord, text: src[i:j], start: i, end: j})
			i = j
		}
	}
	return toks, nil
}

func isDelim(src string, j int) bool {
	switch src[j] {
	case ' ', '\t', '\r', '\n', '{', '}', ';', '"', '#':
		return true
	case '/':
		return j+1 < len(src) && (src[j+1] == '/' || src[j+1] == '*')
	}
	return false
}
