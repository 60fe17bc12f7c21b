package namedconf

import (
	"slices"
	"strings"

	"github.com/haukened/bindmgr/internal/dns/domain"
)

// Option keywords edited by bindmgr.
const (
	KeyRecursion      = "recursion"
	KeyForwarders     = "forwarders"
	KeyAllowRecursion = "allow-recursion"
	KeyMaxCacheSize   = "max-cache-size"
	KeyMaxCacheTTL    = "max-cache-ttl"
	KeyResponsePolicy = "response-policy"
)

// Options returns the top-level options statement, or nil.
func Options(doc *Document) *Statement {
	return doc.First("options")
}

// ensureOptions returns the options statement, appending an empty one when
// the document has none.
func ensureOptions(doc *Document) (*Statement, error) {
	if st := Options(doc); st != nil {
		return st, nil
	}
	text := "options {\n};\n"
	if src := doc.String(); src != "" && !strings.HasSuffix(src, "\n") {
		text = "\n" + text
	}
	if err := doc.Append(text); err != nil {
		return nil, err
	}
	return Options(doc), nil
}

func optionChild(doc *Document, keyword string) *Statement {
	opts := Options(doc)
	if opts == nil {
		return nil
	}
	return opts.Child(keyword)
}

// Recursion reports whether recursion is enabled. BIND enables it when the
// option is absent.
func Recursion(doc *Document) bool {
	st := optionChild(doc, KeyRecursion)
	if st == nil || len(st.Args) == 0 {
		return true
	}
	return isYes(st.Args[0])
}

func isYes(v string) bool {
	switch strings.ToLower(Unquote(v)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// SetRecursion writes "recursion yes;" or "recursion no;".
func SetRecursion(doc *Document, enabled bool) error {
	v := "no"
	if enabled {
		v = "yes"
	}
	return SetScalar(doc, KeyRecursion, v)
}

// Scalar returns the single value of an option such as max-cache-size.
func Scalar(doc *Document, keyword string) (string, bool) {
	st := optionChild(doc, keyword)
	if st == nil || st.HasBlock || len(st.Args) == 0 {
		return "", false
	}
	return strings.Join(st.Args, " "), true
}

// SetScalar replaces a single-value option in place or inserts it as the
// first option. An empty value removes the option.
func SetScalar(doc *Document, keyword, value string) error {
	const op = "set option"
	if st := optionChild(doc, keyword); st != nil {
		var err error
		if value == "" {
			err = doc.Remove(st)
		} else {
			err = doc.Replace(st, keyword+" "+value+";")
		}
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	if value == "" {
		return nil
	}
	opts, err := ensureOptions(doc)
	if err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	return domain.Wrap(domain.KindMalformedInput, op, doc.InsertFirst(opts, keyword+" "+value+";"))
}

// List returns the items of an address-match list option, e.g. forwarders.
func List(doc *Document, keyword string) []string {
	st := optionChild(doc, keyword)
	if st == nil {
		return []string{}
	}
	return st.Items()
}

// AddListItem adds item to the list option keyword, creating the list as the
// first option when absent.
func AddListItem(doc *Document, keyword, item string) error {
	const op = "add list item"
	item = strings.TrimSpace(item)
	if item == "" {
		return domain.Malformed(op, "empty %s entry", keyword)
	}
	st := optionChild(doc, keyword)
	if st == nil {
		opts, err := ensureOptions(doc)
		if err != nil {
			return domain.Wrap(domain.KindMalformedInput, op, err)
		}
		return domain.Wrap(domain.KindMalformedInput, op, doc.InsertFirst(opts, renderList(keyword, []string{item})))
	}
	if !st.HasBlock {
		return domain.Malformed(op, "%s is not a list", keyword)
	}
	if slices.Contains(st.Items(), item) {
		return domain.AlreadyExists(op, "%s already contains %s", keyword, item)
	}
	return domain.Wrap(domain.KindMalformedInput, op, doc.InsertLast(st, item+";"))
}

// RemoveListItem deletes item from the list option keyword only.
func RemoveListItem(doc *Document, keyword, item string) error {
	const op = "remove list item"
	item = strings.TrimSpace(item)
	st := optionChild(doc, keyword)
	if st != nil {
		for _, c := range st.Children {
			if c.Text() == item {
				return domain.Wrap(domain.KindMalformedInput, op, doc.Remove(c))
			}
		}
	}
	return domain.NotFound(op, "%s does not contain %s", keyword, item)
}

// SetList replaces the whole list option. An empty list removes it.
func SetList(doc *Document, keyword string, items []string) error {
	const op = "set list"
	st := optionChild(doc, keyword)
	if len(items) == 0 {
		if st == nil {
			return nil
		}
		return domain.Wrap(domain.KindMalformedInput, op, doc.Remove(st))
	}
	if st != nil {
		if slices.Equal(st.Items(), items) {
			return nil
		}
		return domain.Wrap(domain.KindMalformedInput, op, doc.Replace(st, renderList(keyword, items)))
	}
	opts, err := ensureOptions(doc)
	if err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	return domain.Wrap(domain.KindMalformedInput, op, doc.InsertFirst(opts, renderList(keyword, items)))
}

func renderList(keyword string, items []string) string {
	var b strings.Builder
	b.WriteString(keyword + " {")
	for _, it := range items {
		b.WriteString(" " + it + ";")
	}
	b.WriteString(" };")
	return b.String()
}

// ResponsePolicyZones returns the zones named by every response-policy
// statement in the options.
func ResponsePolicyZones(doc *Document) []string {
	opts := Options(doc)
	if opts == nil {
		return nil
	}
	var zones []string
	for _, st := range opts.Children {
		if st.Keyword != KeyResponsePolicy {
			continue
		}
		for _, c := range st.Children {
			if c.Keyword == "zone" {
				zones = append(zones, c.Name())
			}
		}
	}
	return zones
}

// SetResponsePolicy leaves exactly one response-policy statement naming zone,
// placed as the first option.
func SetResponsePolicy(doc *Document, zone string) error {
	const op = "set response policy"
	text := KeyResponsePolicy + " { zone " + Quote(zone) + "; };"
	opts := Options(doc)
	if opts != nil {
		var found []*Statement
		for _, st := range opts.Children {
			if st.Keyword == KeyResponsePolicy {
				found = append(found, st)
			}
		}
		if len(found) == 1 && doc.String()[found[0].Start:found[0].End] == text {
			return nil
		}
	}
	if err := removeAll(doc, KeyResponsePolicy); err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	opts, err := ensureOptions(doc)
	if err != nil {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	return domain.Wrap(domain.KindMalformedInput, op, doc.InsertFirst(opts, text))
}

// RemoveResponsePolicy deletes every response-policy statement and reports
// whether there was one.
func RemoveResponsePolicy(doc *Document) (bool, error) {
	had := len(ResponsePolicyZones(doc)) > 0 || optionChild(doc, KeyResponsePolicy) != nil
	if err := removeAll(doc, KeyResponsePolicy); err != nil {
		return false, domain.Wrap(domain.KindMalformedInput, "remove response policy", err)
	}
	return had, nil
}

func removeAll(doc *Document, keyword string) error {
	for {
		st := optionChild(doc, keyword)
		if st == nil {
			return nil
		}
		if err := doc.Remove(st); err != nil {
			return err
		}
	}
}
