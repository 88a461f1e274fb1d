package citation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/errors"
)

// Compact notation stores a list of locations as
//
//	book.chapter[:verse,verse,...]|book.chapter...
//
// e.g. "41.5:3,4,5,7|42.2". It is lossless and independent of the catalog's
// short names.
//
//nolint:govet // participle grammar tags are not standard struct tags
type compactGrammar struct {
	Items []*compactLocation `@@ ( "|" @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type compactLocation struct {
	Book    int   `@Int "."`
	Chapter int   `@Int`
	Verses  []int `( ":" @Int ( "," @Int )* )?`
}

var compactLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[.:,|]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var compactParser = participle.MustBuild[compactGrammar](
	participle.Lexer(compactLexer),
	participle.Elide("Whitespace"),
)

// FormatLocations renders locations in compact notation.
func FormatLocations(locations []Location) string {
	parts := make([]string, len(locations))
	for i, l := range locations {
		parts[i] = l.Compact()
	}
	return strings.Join(parts, "|")
}

// ParseLocations parses compact notation. An empty string yields no
// locations.
func ParseLocations(s string) ([]Location, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parsed, err := compactParser.ParseString("", s)
	if err != nil {
		return nil, &errors.ParseError{Format: "location notation", Message: err.Error(), Err: err}
	}
	out := make([]Location, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		l := Location{Book: it.Book, Chapter: it.Chapter}
		if len(it.Verses) > 0 {
			l.Filter = normalizeFilter(it.Verses)
		}
		out = append(out, l)
	}
	return out, nil
}

// Compact renders the location as "book.chapter[:v,v,...]".
func (l Location) Compact() string {
	s := strconv.Itoa(l.Book) + "." + strconv.Itoa(l.Chapter)
	if f := l.FormatFilter(); f != "" {
		s += ":" + f
	}
	return s
}

// FormatFilter renders the verse filter as "3,4,5,7"; a whole chapter
// renders as "".
func (l Location) FormatFilter() string {
	if len(l.Filter) == 0 {
		return ""
	}
	parts := make([]string, len(l.Filter))
	for i, v := range l.Filter {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// ParseFilter parses a comma-separated verse filter. An empty string is the
// whole chapter (nil).
func ParseFilter(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	verses := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || v < 1 {
			return nil, &errors.ValidationError{Field: "filter", Value: s, Message: fmt.Sprintf("invalid verse %q", f)}
		}
		verses = append(verses, v)
	}
	return normalizeFilter(verses), nil
}

func normalizeFilter(verses []int) []int {
	out := append([]int(nil), verses...)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

// ranges compresses sorted verses into "a-b" runs.
func ranges(verses []int) []string {
	var out []string
	for i := 0; i < len(verses); {
		j := i
		for j+1 < len(verses) && verses[j+1] == verses[j]+1 {
			j++
		}
		if j > i {
			out = append(out, fmt.Sprintf("%d-%d", verses[i], verses[j]))
		} else {
			out = append(out, strconv.Itoa(verses[i]))
		}
		i = j + 1
	}
	return out
}

// Citation renders the set back into citation syntax using the catalog's
// short names, e.g. "Мф. 5:3-5,7; Лк. 2". Consecutive whole chapters are
// joined into chapter intervals and consecutive verses into verse
// intervals. The result parses back to the same locations.
func (s *LocationSet) Citation(cat *catalog.Catalog) string {
	type group struct {
		book  int
		items []string
	}
	var groups []group
	locs := s.Locations

	for i := 0; i < len(locs); i++ {
		l := locs[i]
		startNew := len(groups) == 0 || groups[len(groups)-1].book != l.Book ||
			(l.Whole() && !locs[i-1].Whole())
		if startNew {
			groups = append(groups, group{book: l.Book})
		}
		g := &groups[len(groups)-1]

		if !l.Whole() {
			g.items = append(g.items, fmt.Sprintf("%d:%s", l.Chapter, strings.Join(ranges(l.Filter), ",")))
			continue
		}
		j := i
		for j+1 < len(locs) && locs[j+1].Book == l.Book && locs[j+1].Whole() && locs[j+1].Chapter == locs[j].Chapter+1 {
			j++
		}
		if j > i {
			g.items = append(g.items, fmt.Sprintf("%d-%d", l.Chapter, locs[j].Chapter))
		} else {
			g.items = append(g.items, strconv.Itoa(l.Chapter))
		}
		i = j
	}

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		name := strconv.Itoa(g.book)
		if b, ok := cat.Book(g.book); ok {
			name = b.ShortName
		}
		parts = append(parts, name+". "+strings.Join(g.items, ", "))
	}
	return strings.Join(parts, "; ")
}

// OSIS renders the location as space-separated OSIS references, e.g.
// "Matt.5.3-5 Matt.5.7" or "Luke.2" for a whole chapter.
func (l Location) OSIS(cat *catalog.Catalog) string {
	id := strconv.Itoa(l.Book)
	if b, ok := cat.Book(l.Book); ok && b.OSIS != "" {
		id = b.OSIS
	}
	prefix := fmt.Sprintf("%s.%d", id, l.Chapter)
	if l.Whole() {
		return prefix
	}
	rs := ranges(l.Filter)
	for i, r := range rs {
		rs[i] = prefix + "." + r
	}
	return strings.Join(rs, " ")
}

// OSIS renders every location of the set.
func (s *LocationSet) OSIS(cat *catalog.Catalog) []string {
	out := make([]string, len(s.Locations))
	for i, l := range s.Locations {
		out[i] = l.OSIS(cat)
	}
	return out
}
