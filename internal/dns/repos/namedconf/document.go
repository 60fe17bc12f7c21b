package namedconf

import (
	"strings"
)

const indentUnit = "    "

// Document is a parsed named.conf file. Edits splice the source text at the
// affected statement and re-parse, so everything an edit does not touch,
// comments and formatting included, is written back byte for byte.
type Document struct {
	src   string
	stmts []*Statement
}

// Parse builds a Document from named.conf text.
func Parse(src string) (*Document, error) {
	stmts, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Document{src: src, stmts: stmts}, nil
}

// String returns the current text.
func (d *Document) String() string { return d.src }

// Statements returns the top-level statements.
func (d *Document) Statements() []*Statement { return d.stmts }

// Find returns all top-level statements with the given keyword.
func (d *Document) Find(keyword string) []*Statement {
	var out []*Statement
	for _, st := range d.stmts {
		if st.Keyword == keyword {
			out = append(out, st)
		}
	}
	return out
}

// First returns the first top-level statement with the given keyword.
func (d *Document) First(keyword string) *Statement {
	for _, st := range d.stmts {
		if st.Keyword == keyword {
			return st
		}
	}
	return nil
}

func (d *Document) splice(start, end int, text string) error {
	next := d.src[:start] + text + d.src[end:]
	stmts, err := parse(next)
	if err != nil {
		return err
	}
	d.src, d.stmts = next, stmts
	return nil
}

// Append adds text at the end of the document.
func (d *Document) Append(text string) error {
	return d.splice(len(d.src), len(d.src), text)
}

// Replace swaps the text of st, from keyword to ';', for text.
func (d *Document) Replace(st *Statement, text string) error {
	return d.splice(st.Start, st.End, text)
}

// Remove deletes st. When st sits on lines of its own those lines go too.
// Lines directly above st whose trimmed text equals one of leading, given top
// to bottom, are removed along with it. When leading starts with a blank line,
// everything but that blank line matched and st ends the document, the line
// break before st goes too: appending "\n"+text to a file without a final
// newline leaves exactly that shape.
func (d *Document) Remove(st *Statement, leading ...string) error {
	start, end := st.Start, st.End

	lineStart := strings.LastIndexByte(d.src[:start], '\n') + 1
	ownsStart := strings.TrimSpace(d.src[lineStart:start]) == ""

	rest := d.src[end:]
	nl := strings.IndexByte(rest, '\n')
	tail := rest
	if nl >= 0 {
		tail = rest[:nl]
	}
	ownsEnd := strings.TrimSpace(tail) == ""

	switch {
	case ownsStart && ownsEnd:
		start = lineStart
		if nl >= 0 {
			end += nl + 1
		} else {
			end = len(d.src)
		}
		var matched int
		start, matched = d.extendUp(start, leading)
		missingBlank := len(leading) > 0 && leading[0] == "" && matched == len(leading)-1
		if missingBlank && end == len(d.src) && start > 0 && d.src[start-1] == '\n' {
			start--
		}
	default:
		// share the line with other content; drop trailing blanks only
		for end < len(d.src) && (d.src[end] == ' ' || d.src[end] == '\t') {
			end++
		}
	}
	return d.splice(start, end, "")
}

// InsertFirst places text as the first child of block, on its own lines
// directly after the line holding the opening brace.
func (d *Document) InsertFirst(block *Statement, text string) error {
	after := block.Open + 1
	nl := strings.IndexByte(d.src[after:], '\n')
	if nl >= 0 && isBlankOrComment(d.src[after:after+nl]) {
		at := after + nl + 1
		return d.splice(at, at, indentLines(text, d.childIndent(block)))
	}
	return d.splice(after, after, " "+flatten(text))
}

// InsertLast places text as the last child of block, just before the closing brace.
func (d *Document) InsertLast(block *Statement, text string) error {
	lineStart := strings.LastIndexByte(d.src[:block.Close], '\n') + 1
	if lineStart > block.Open && strings.TrimSpace(d.src[lineStart:block.Close]) == "" {
		return d.splice(lineStart, lineStart, indentLines(text, d.childIndent(block)))
	}
	text = flatten(text)
	if block.Close > 0 && d.src[block.Close-1] == ' ' {
		return d.splice(block.Close, block.Close, text+" ")
	}
	return d.splice(block.Close, block.Close, " "+text+" ")
}

// InsertAfterLine places text on new lines after the line containing offset.
func (d *Document) InsertAfterLine(offset int, text string) error {
	nl := strings.IndexByte(d.src[offset:], '\n')
	if nl < 0 {
		return d.Append("\n" + text)
	}
	at := offset + nl + 1
	return d.splice(at, at, text)
}

// LineOffset returns the offset of the first line whose trimmed text equals line.
func (d *Document) LineOffset(line string) (int, bool) {
	off := 0
	for l := range strings.Lines(d.src) {
		if strings.TrimSpace(l) == line {
			return off, true
		}
		off += len(l)
	}
	return 0, false
}

// RemoveLine deletes the first line whose trimmed text equals line, plus the
// matching leading lines as in Remove.
func (d *Document) RemoveLine(line string, leading ...string) (bool, error) {
	off, ok := d.LineOffset(line)
	if !ok {
		return false, nil
	}
	end := len(d.src)
	if nl := strings.IndexByte(d.src[off:], '\n'); nl >= 0 {
		end = off + nl + 1
	}
	start, _ := d.extendUp(off, leading)
	return true, d.splice(start, end, "")
}

// extendUp moves start, the beginning of a line, up over the lines directly
// above it that match leading, checked bottom-up. It returns the new start and
// how many lines matched.
func (d *Document) extendUp(start int, leading []string) (int, int) {
	matched := 0
	for i := len(leading) - 1; i >= 0 && start > 0; i-- {
		prevStart := strings.LastIndexByte(d.src[:start-1], '\n') + 1
		if strings.TrimSpace(d.src[prevStart:start-1]) != leading[i] {
			break
		}
		start = prevStart
		matched++
	}
	return start, matched
}

// childIndent is the indentation used for new children of block: that of an
// existing child on its own line, or one unit deeper than the block.
func (d *Document) childIndent(block *Statement) string {
	for _, c := range block.Children {
		ls := strings.LastIndexByte(d.src[:c.Start], '\n') + 1
		if ls > block.Open && strings.TrimSpace(d.src[ls:c.Start]) == "" {
			return d.src[ls:c.Start]
		}
	}
	return d.indentOf(block.Start) + indentUnit
}

func (d *Document) indentOf(offset int) string {
	ls := strings.LastIndexByte(d.src[:offset], '\n') + 1
	prefix := d.src[ls:offset]
	return prefix[:len(prefix)-len(strings.TrimLeft(prefix, " \t"))]
}

func isBlankOrComment(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.HasPrefix(s, "//") || strings.HasPrefix(s, "#")
}

// indentLines prefixes every line of text with indent and terminates it with a newline.
func indentLines(text, indent string) string {
	var b strings.Builder
	for line := range strings.Lines(strings.TrimRight(text, "\n") + "\n") {
		if strings.TrimSpace(line) == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

// flatten joins a multi-line statement into one line.
func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
