package namedconf

import (
	"fmt"
	"strings"
)

// Statement is one named.conf statement: a keyword, its arguments, and an
// optional { } block of child statements, terminated by ';'.
//
//	zone "example.org" { type master; file "db.example.org"; };
//
// Some statements carry more words and blocks after the first one, as in
//
//	inet 127.0.0.1 port 953 allow { 127.0.0.1; } keys { "rndc-key"; };
//
// where "keys" lands in Trailing and its block in Extra.
//
// Offsets point into the source the statement was parsed from and are only
// valid until the owning Document is modified.
type Statement struct {
	Keyword  string
	Args     []string // raw tokens, quotes kept
	Children []*Statement
	Trailing []string    // words between the first closing brace and ';'
	Extra    []*Statement // blocks after the first, keyword-less
	HasBlock bool

	Start, End  int // from the keyword up to and including ';'
	Open, Close int // offsets of '{' and '}' when HasBlock
}

// Name returns the first argument without quotes, e.g. the zone name.
func (s *Statement) Name() string {
	if len(s.Args) == 0 {
		return ""
	}
	return Unquote(s.Args[0])
}

// Text returns keyword and arguments joined by single spaces, quotes kept.
func (s *Statement) Text() string {
	if len(s.Args) == 0 {
		return s.Keyword
	}
	return s.Keyword + " " + strings.Join(s.Args, " ")
}

// Child returns the first direct child with the given keyword.
func (s *Statement) Child(keyword string) *Statement {
	for _, c := range s.Children {
		if c.Keyword == keyword {
			return c
		}
	}
	return nil
}

// Items returns the text of every child, which for address lists such as
// forwarders or allow-recursion are the list elements.
func (s *Statement) Items() []string {
	items := make([]string, 0, len(s.Children))
	for _, c := range s.Children {
		items = append(items, c.Text())
	}
	return items
}

// Unquote strips one pair of surrounding double quotes.
func Unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// Quote wraps s in double quotes.
func Quote(s string) string {
	return `"` + s + `"`
}

type parser struct {
	toks []token
	pos  int
}

func parse(src string) ([]*Statement, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	stmts, err := p.list(0)
	if err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) list(depth int) ([]*Statement, error) {
	var stmts []*Statement
	for {
		t, ok := p.peek()
		if !ok {
			if depth > 0 {
				return nil, fmt.Errorf("unexpected end of input: missing '}'")
			}
			return stmts, nil
		}
		switch t.kind {
		case tokClose:
			if depth == 0 {
				return nil, fmt.Errorf("unexpected '}' at offset %d", t.start)
			}
			return stmts, nil
		case tokSemi:
			p.pos++
			continue
		}
		st, err := p.statement(depth)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
}

func (p *parser) statement(depth int) (*Statement, error) {
	first, _ := p.peek()
	st := &Statement{Start: first.start}
	if first.kind == tokWord || first.kind == tokString {
		st.Keyword = first.text
		p.pos++
	}
	for {
		t, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("unexpected end of input after %q", st.Keyword)
		}
		switch t.kind {
		case tokWord, tokString:
			st.Args = append(st.Args, t.text)
			p.pos++
		case tokSemi:
			st.End = t.end
			p.pos++
			return st, nil
		case tokOpen:
			return p.block(st, depth)
		default:
			return nil, fmt.Errorf("missing ';' before offset %d", t.start)
		}
	}
}

func (p *parser) block(st *Statement, depth int) (*Statement, error) {
	if err := p.braces(st, depth); err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok {
			return nil, fmt.Errorf("missing ';' after '}' at offset %d", st.Close)
		}
		switch t.kind {
		case tokWord, tokString:
			st.Trailing = append(st.Trailing, t.text)
			p.pos++
		case tokOpen:
			extra := &Statement{Start: t.start}
			if err := p.braces(extra, depth); err != nil {
				return nil, err
			}
			extra.End = extra.Close + 1
			st.Extra = append(st.Extra, extra)
		case tokSemi:
			st.End = t.end
			p.pos++
			return st, nil
		default:
			return nil, fmt.Errorf("missing ';' after '}' at offset %d", st.Close)
		}
	}
}

// braces consumes '{', the children and the matching '}' into st.
func (p *parser) braces(st *Statement, depth int) error {
	open, _ := p.peek()
	st.HasBlock = true
	st.Open = open.start
	p.pos++

	children, err := p.list(depth + 1)
	if err != nil {
		return err
	}
	st.Children = children
	closing, _ := p.peek()
	st.Close = closing.start
	p.pos++
	return nil
}
