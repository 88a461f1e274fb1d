package catalog

import (
	"fmt"

	"github.com/FocuswithJustin/lectio/core/numerals"
)

// ChapterTitle returns the Russian heading of a chapter, e.g. "Глава 5"
// or "Псалом 50".
func (c *Catalog) ChapterTitle(book, chapter int) string {
	b, ok := c.Book(book)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %d", b.ChapterName, chapter)
}

// ShortTitle returns the compact heading of a chapter, e.g. "Мф.5".
func (c *Catalog) ShortTitle(book, chapter int) string {
	b, ok := c.Book(book)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s.%d", b.ShortName, chapter)
}

// SlavonicChapterTitle returns the Church-Slavonic heading of a chapter with
// the chapter number in Slavonic numerals.
func (c *Catalog) SlavonicChapterTitle(book, chapter int) string {
	b, ok := c.Book(book)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %s", b.CSChapterName, numerals.Slavonic(chapter))
}
