package citation

import (
	"fmt"
	"testing"

	"github.com/FocuswithJustin/lectio/core/catalog"
)

var (
	matthewVerses = []int{25, 23, 17, 25, 48, 34, 29, 34, 38, 42, 30, 50, 58, 36, 39, 28, 27, 35, 30, 34, 46, 46, 39, 51, 46, 75, 66, 20}
	lukeVerses    = []int{80, 52, 38, 44, 39, 49, 50, 56, 62, 42, 54, 59, 35, 35, 32, 31, 37, 43, 48, 47, 38, 71, 56, 53}
)

const (
	bookJude     = 1
	bookJudith   = 2
	bookRollover = 3
	bookMatthew  = 41
	bookLuke     = 42
)

func filled(chapters, verses int) []int {
	out := make([]int, chapters)
	for i := range out {
		out[i] = verses
	}
	return out
}

// testCatalog has "мф" at 41 and "лк" at 42, a book whose chapters hold 25,
// 18 and 10 verses, and two names where one is a prefix of the other.
func testCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	books := []catalog.Book{
		{Ordinal: bookJude, ShortName: "Иуд", OSIS: "Jude", Chapters: 1, Verses: []int{25}},
		{Ordinal: bookJudith, ShortName: "Иудиф", OSIS: "Jdt", Chapters: 16, Verses: filled(16, 20)},
		{Ordinal: bookRollover, ShortName: "Рол", Chapters: 3, Verses: []int{25, 18, 10}},
	}
	for ord := 4; ord <= 40; ord++ {
		name := fmt.Sprintf("x%c%c", 'a'+ord/26, 'a'+ord%26)
		books = append(books, catalog.Book{Ordinal: ord, ShortName: name, Chapters: 1, Verses: []int{10}})
	}
	books = append(books,
		catalog.Book{Ordinal: bookMatthew, ShortName: "Мф", OSIS: "Matt", Section: catalog.SectionGospel, Chapters: 28, Verses: matthewVerses},
		catalog.Book{Ordinal: bookLuke, ShortName: "Лк", OSIS: "Luke", Section: catalog.SectionGospel, Chapters: 24, Verses: lukeVerses},
	)
	c, err := catalog.New(books, catalog.WithName("test"))
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return c
}

func testParser(t testing.TB) *Parser {
	t.Helper()
	p, err := NewParser(testCatalog(t))
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	return p
}

func verses(book, chapter int, vs ...int) []SearchCode {
	out := make([]SearchCode, len(vs))
	for i, v := range vs {
		out[i] = SearchCode{Book: book, Chapter: chapter, Verse: v}
	}
	return out
}

func chapters(book int, cs ...int) []SearchCode {
	out := make([]SearchCode, len(cs))
	for i, c := range cs {
		out[i] = SearchCode{Book: book, Chapter: c}
	}
	return out
}

func span(book, chapter, from, to int) []SearchCode {
	var out []SearchCode
	for v := from; v <= to; v++ {
		out = append(out, SearchCode{Book: book, Chapter: chapter, Verse: v})
	}
	return out
}

func seq(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func concat(parts ...[]SearchCode) []SearchCode {
	var out []SearchCode
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
