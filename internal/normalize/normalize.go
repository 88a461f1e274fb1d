// Package normalize cleans raw lectionary links, as published in church
// calendars, into citation syntax the parser accepts.
//
//	"Мк., 12 зач., IV, 35-41."  ->  "Мк. 4:35-41"
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/lectio/core/numerals"
)

type rule struct {
	re   *regexp.Regexp
	repl string
}

var (
	entities = strings.NewReplacer(
		"&#769;", "",
		"\u0301", "",
		"&nbsp;", " ",
		"\u00a0", " ",
		"\u2013", "-",
		"\u2014", "-",
		"&ndash;", "-",
		"&mdash;", "-",
		"*", "",
	)

	rules = []rule{
		// pericope number, e.g. ", 12 зач.," or ", 3 зач. (от полу),"
		{regexp.MustCompile(`, *\d+ зач\.(?: \(от полу\))? *,`), ""},
		{regexp.MustCompile(`последи`), ""},
		// "1 Кор" -> "1Кор" at the start of every book group
		{regexp.MustCompile(`(^|; *)(\d) ([А-Яа-яЁё])`), "$1$2$3"},
		{regexp.MustCompile(`Сол\.`), "Фес."},
		{regexp.MustCompile(`Притч\.`), "Прит."},
		// five-digit verse artifacts keep their first two digits
		{regexp.MustCompile(`(\d\d)\d\d\d`), "$1"},
	}

	romanChapter = regexp.MustCompile(`([IVXLCDM]+), `)
	spacedList   = regexp.MustCompile(`(\d), (\d)`)
	spaces       = regexp.MustCompile(` {2,}`)
)

// Link normalizes one raw link. Roman chapter numerals followed by ", "
// become "N:" and "d, d" after them collapses to "d,d". Roman-looking
// tokens that are not valid numerals are left in place.
func Link(s string) string {
	s = entities.Replace(s)
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	s = romanChapters(s)
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimRight(strings.TrimSpace(s), ".")
}

func romanChapters(s string) string {
	from := 0
	for {
		loc := romanChapter.FindStringSubmatchIndex(s[from:])
		if loc == nil {
			return s
		}
		start, end := from+loc[0], from+loc[1]
		n, err := numerals.RomanToInt(s[from+loc[2] : from+loc[3]])
		if err != nil {
			from = end
			continue
		}
		head := s[:start] + strconv.Itoa(n) + ":"
		s = head + collapseLists(s[end:])
		from = len(head)
	}
}

func collapseLists(s string) string {
	for {
		next := spacedList.ReplaceAllString(s, "$1,$2")
		if next == s {
			return s
		}
		s = next
	}
}

// Links normalizes each link of a ';'-free list and joins them with "; ".
// Empty results are dropped.
func Links(links []string) string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if l = Link(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "; ")
}
