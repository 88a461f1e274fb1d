// Package citation parses short-hand scripture citations such as
// "Мф. 5:3-12, 21; Лк. 2" into ordered book/chapter/verse locations.
//
// Parsing runs in three stages. A character-level recognizer scans each
// ';'-separated book group and emits SearchCodes, using a Transformer to
// expand whole books, chapter intervals and verse intervals against the
// catalog. The resulting flat list is grouped into Locations by Assemble.
// A Validator built from the catalog's short names gates malformed input
// before it reaches the recognizer.
package citation

import (
	"cmp"
	"fmt"
)

// Catalog is the read-only view of the book catalog the parser needs.
// *catalog.Catalog satisfies it.
type Catalog interface {
	// BookOrdinal resolves a short name case-insensitively.
	BookOrdinal(shortName string) (int, bool)
	// Len returns the number of books; valid ordinals are 1..Len().
	Len() int
	// ChapterCount returns 0 for unknown books.
	ChapterCount(book int) int
	// VerseCount returns 0 for unknown books or chapters.
	VerseCount(book, chapter int) int
	// ShortNames returns every short name.
	ShortNames() []string
}

// SearchCode is an intermediate (book, chapter, verse) triple. Zero means
// unspecified: chapter 0 is the whole book and verse 0 the whole chapter.
type SearchCode struct {
	Book    int `json:"book"`
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// Compare orders codes lexicographically by book, chapter, verse and
// returns -1, 0 or +1.
func (c SearchCode) Compare(o SearchCode) int {
	if n := cmp.Compare(c.Book, o.Book); n != 0 {
		return n
	}
	if n := cmp.Compare(c.Chapter, o.Chapter); n != 0 {
		return n
	}
	return cmp.Compare(c.Verse, o.Verse)
}

func (c SearchCode) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Book, c.Chapter, c.Verse)
}

