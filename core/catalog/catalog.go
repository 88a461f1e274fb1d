// Package catalog holds the book catalog that citations are resolved
// against: canonical book order, short names, chapter counts and the
// per-chapter verse counts used for interval expansion.
//
// A Catalog is immutable once constructed and safe for concurrent use.
// Verse counts may be supplied eagerly on each Book or lazily through a
// ChapterSource; lazily loaded tables are fetched at most once per book.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/FocuswithJustin/lectio/core/errors"
)

// Section is the liturgical grouping of a book, used to classify readings.
type Section string

const (
	SectionOldTestament Section = "ot"
	SectionGospel       Section = "gospel"
	SectionApostle      Section = "apostle"
)

// Valid reports whether s is one of the known sections.
func (s Section) Valid() bool {
	switch s {
	case SectionOldTestament, SectionGospel, SectionApostle:
		return true
	}
	return false
}

// Book is one catalog record.
type Book struct {
	Ordinal       int     // 1-based canonical position
	ShortName     string  // e.g. "Мф"
	Name          string  // full Russian name
	OSIS          string  // OSIS book id, e.g. "Matt"
	Section       Section // liturgical section
	ChapterName   string  // Russian chapter word, e.g. "Глава"
	CSName        string  // Church-Slavonic name
	CSChapterName string  // Church-Slavonic chapter word
	Chapters      int     // chapter count
	Verses        []int   // verse count per chapter; nil when loaded lazily
}

// ChapterSource supplies verse counts for a book on first use.
type ChapterSource interface {
	ChapterSizes(book int) ([]int, error)
}

// Option configures a Catalog at construction.
type Option func(*Catalog)

// WithChapterSource sets the source consulted for books that carry no
// verse counts of their own.
func WithChapterSource(src ChapterSource) Option {
	return func(c *Catalog) { c.source = src }
}

// WithName labels the catalog (e.g. "synodal").
func WithName(name string) Option {
	return func(c *Catalog) { c.name = name }
}

// Catalog is an immutable, ordered set of books.
type Catalog struct {
	name   string
	books  []Book
	byName map[string]int
	source ChapterSource
	lazy   []lazyVerses
}

type lazyVerses struct {
	once   sync.Once
	verses []int
	err    error
}

// New validates books and builds a Catalog. Books may be given in any order
// but their ordinals must be exactly 1..len(books).
func New(books []Book, opts ...Option) (*Catalog, error) {
	if len(books) == 0 {
		return nil, errors.NewValidation("books", "catalog has no books")
	}

	sorted := make([]Book, len(books))
	copy(sorted, books)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ordinal < sorted[j].Ordinal })

	c := &Catalog{
		books:  sorted,
		byName: make(map[string]int, len(sorted)),
		lazy:   make([]lazyVerses, len(sorted)),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i := range sorted {
		b := &sorted[i]
		if b.Ordinal != i+1 {
			return nil, &errors.ValidationError{
				Field:   "ordinal",
				Value:   fmt.Sprint(b.Ordinal),
				Message: fmt.Sprintf("book ordinals must be contiguous from 1, expected %d", i+1),
			}
		}
		key := strings.ToLower(strings.TrimSpace(b.ShortName))
		if key == "" {
			return nil, errors.NewValidation("short_name", fmt.Sprintf("book %d has no short name", b.Ordinal))
		}
		if prev, ok := c.byName[key]; ok {
			return nil, errors.NewValidation("short_name",
				fmt.Sprintf("short name %q used by books %d and %d", b.ShortName, prev, b.Ordinal))
		}
		if b.Chapters < 1 {
			return nil, errors.NewValidation("chapters", fmt.Sprintf("book %d has no chapters", b.Ordinal))
		}
		if b.Verses != nil {
			if err := checkVerses(b.Ordinal, b.Chapters, b.Verses); err != nil {
				return nil, err
			}
			b.Verses = append([]int(nil), b.Verses...)
		}
		if b.Section != "" && !b.Section.Valid() {
			return nil, &errors.ValidationError{Field: "section", Value: string(b.Section), Message: "unknown section"}
		}
		c.byName[key] = b.Ordinal
	}
	return c, nil
}

func checkVerses(book, chapters int, verses []int) error {
	if len(verses) != chapters {
		return errors.NewValidation("verses",
			fmt.Sprintf("book %d declares %d chapters but has %d verse counts", book, chapters, len(verses)))
	}
	for i, n := range verses {
		if n < 1 {
			return errors.NewValidation("verses", fmt.Sprintf("book %d chapter %d has no verses", book, i+1))
		}
	}
	return nil
}

// Name returns the catalog label, if any.
func (c *Catalog) Name() string { return c.name }

// Len returns the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// BookOrdinal resolves a short name case-insensitively. Unknown names
// yield (0, false).
func (c *Catalog) BookOrdinal(shortName string) (int, bool) {
	ord, ok := c.byName[strings.ToLower(strings.TrimSpace(shortName))]
	return ord, ok
}

// Book returns the record for ordinal.
func (c *Catalog) Book(ordinal int) (Book, bool) {
	if ordinal < 1 || ordinal > len(c.books) {
		return Book{}, false
	}
	return c.books[ordinal-1], true
}

// Books returns a copy of all records in canonical order.
func (c *Catalog) Books() []Book {
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

// ChapterCount returns the number of chapters in book, or 0 for an
// unknown ordinal.
func (c *Catalog) ChapterCount(book int) int {
	if book < 1 || book > len(c.books) {
		return 0
	}
	return c.books[book-1].Chapters
}

// Section returns the liturgical section of book.
func (c *Catalog) Section(book int) Section {
	if book < 1 || book > len(c.books) {
		return ""
	}
	return c.books[book-1].Section
}

// ShortNames returns every short name, sorted.
func (c *Catalog) ShortNames() []string {
	names := make([]string, 0, len(c.books))
	for _, b := range c.books {
		names = append(names, b.ShortName)
	}
	sort.Strings(names)
	return names
}

// VerseCount returns the number of verses in chapter of book, or 0 when
// either is out of range.
//
// Interval expansion cannot proceed without verse counts, so a book whose
// table is missing (no inline counts and no ChapterSource, or a source
// failure) panics with *errors.PreconditionError. Call RequireVerseCounts
// at startup to surface that as an error instead.
func (c *Catalog) VerseCount(book, chapter int) int {
	if book < 1 || book > len(c.books) {
		return 0
	}
	b := &c.books[book-1]
	if chapter < 1 || chapter > b.Chapters {
		return 0
	}
	verses, err := c.verses(book)
	if err != nil {
		panic(err)
	}
	return verses[chapter-1]
}

func (c *Catalog) verses(book int) ([]int, error) {
	b := &c.books[book-1]
	if b.Verses != nil {
		return b.Verses, nil
	}
	l := &c.lazy[book-1]
	l.once.Do(func() {
		subject := fmt.Sprintf("book %d", book)
		if c.source == nil {
			l.err = errors.NewPrecondition("verse counts", subject, nil)
			return
		}
		verses, err := c.source.ChapterSizes(book)
		if err == nil {
			err = checkVerses(book, b.Chapters, verses)
		}
		if err != nil {
			l.err = errors.NewPrecondition("verse counts", subject, err)
			return
		}
		l.verses = verses
	})
	return l.verses, l.err
}

// HasVerseCounts reports whether verse counts for book are available
// without consulting a ChapterSource.
func (c *Catalog) HasVerseCounts(book int) bool {
	if book < 1 || book > len(c.books) {
		return false
	}
	return c.books[book-1].Verses != nil
}

// RequireVerseCounts loads the verse table of every book and returns the
// first failure as a *errors.PreconditionError.
func (c *Catalog) RequireVerseCounts() error {
	for i := range c.books {
		if _, err := c.verses(i + 1); err != nil {
			return err
		}
	}
	return nil
}
