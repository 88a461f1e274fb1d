package citation

import "sort"

// Location is one chapter of a book, optionally narrowed to a set of
// verses. A nil Filter means the whole chapter.
type Location struct {
	Book    int   `json:"book"`
	Chapter int   `json:"chapter"`
	Filter  []int `json:"filter,omitempty"`
}

// Whole reports whether the location covers the entire chapter.
func (l Location) Whole() bool {
	return l.Filter == nil
}

// Contains reports whether verse lies within the location.
func (l Location) Contains(verse int) bool {
	if l.Whole() {
		return true
	}
	i := sort.SearchInts(l.Filter, verse)
	return i < len(l.Filter) && l.Filter[i] == verse
}

// LocationSet is the result of parsing one citation string.
type LocationSet struct {
	// Name is the citation the set was parsed from.
	Name      string     `json:"name"`
	Locations []Location `json:"locations"`
	// Current is the selected location index.
	Current int `json:"current"`
	// ScrollRatio is a display hint; negative means unset.
	ScrollRatio float64 `json:"scroll_ratio"`
}

// NewLocationSet wraps locations with the default selection and no
// display hint.
func NewLocationSet(name string, locations []Location) *LocationSet {
	return &LocationSet{Name: name, Locations: locations, Current: 0, ScrollRatio: -1}
}

// Assemble groups codes into Locations in order of appearance. A new
// Location starts whenever (book, chapter) changes. A whole-chapter code
// resets its run to the whole chapter and drops the verses seen so far;
// verses after it start a new filter. Filters are sorted ascending without
// duplicates.
func Assemble(codes []SearchCode) []Location {
	var locations []Location
	var verses map[int]struct{}
	whole := false

	flush := func() {
		if len(locations) == 0 {
			return
		}
		last := &locations[len(locations)-1]
		if whole {
			return
		}
		last.Filter = make([]int, 0, len(verses))
		for v := range verses {
			last.Filter = append(last.Filter, v)
		}
		sort.Ints(last.Filter)
	}

	for i, code := range codes {
		if i == 0 || code.Book != codes[i-1].Book || code.Chapter != codes[i-1].Chapter {
			flush()
			locations = append(locations, Location{Book: code.Book, Chapter: code.Chapter})
			verses = make(map[int]struct{})
			whole = false
		}
		if code.Verse == 0 {
			whole = true
			clear(verses)
		} else {
			whole = false
			verses[code.Verse] = struct{}{}
		}
	}
	flush()
	return locations
}
