package citation

// Transformer expands codes containing zero placeholders or spanning an
// interval into concrete codes. Out-of-range input expands to nothing.
type Transformer struct {
	cat Catalog
}

// NewTransformer returns a Transformer bound to cat.
func NewTransformer(cat Catalog) *Transformer {
	return &Transformer{cat: cat}
}

func (t *Transformer) validBook(book int) bool {
	return book >= 1 && book <= t.cat.Len()
}

// ExpandSingle expands one code. Chapter 0 yields one whole-chapter code per
// chapter of the book. Unknown books, out-of-range chapters and negative
// verses yield nothing; any other code is returned unchanged.
func (t *Transformer) ExpandSingle(code SearchCode) []SearchCode {
	if !t.validBook(code.Book) || code.Verse < 0 {
		return nil
	}
	chapters := t.cat.ChapterCount(code.Book)
	if code.Chapter == 0 {
		out := make([]SearchCode, 0, chapters)
		for c := 1; c <= chapters; c++ {
			out = append(out, SearchCode{Book: code.Book, Chapter: c})
		}
		return out
	}
	if code.Chapter < 1 || code.Chapter > chapters {
		return nil
	}
	return []SearchCode{code}
}

// ExpandInterval expands the closed interval a..b within one book.
//
// An interval with a chapter 0 endpoint is empty. Two whole-chapter codes
// expand to every chapter between them that the book has. Otherwise
// the interval is walked verse by verse from a, rolling over to verse 1 of
// the next chapter when a chapter's verse count is exceeded, and stopping
// after b or at the end of the book. A reversed interval is empty.
func (t *Transformer) ExpandInterval(a, b SearchCode) []SearchCode {
	if a.Book != b.Book || !t.validBook(a.Book) {
		return nil
	}
	if a.Chapter == 0 || b.Chapter == 0 {
		return nil
	}
	if a == b {
		return t.ExpandSingle(a)
	}
	chapters := t.cat.ChapterCount(a.Book)
	if a.Verse == 0 && b.Verse == 0 {
		var out []SearchCode
		for c := max(a.Chapter, 1); c <= min(b.Chapter, chapters); c++ {
			out = append(out, t.ExpandSingle(SearchCode{Book: a.Book, Chapter: c})...)
		}
		return out
	}
	if a.Compare(b) > 0 {
		return nil
	}

	if a.Chapter < 1 || a.Chapter > chapters || a.Verse < 0 {
		return nil
	}

	var out []SearchCode
	c, v := a.Chapter, a.Verse
	for c <= chapters && (c < b.Chapter || (c == b.Chapter && v <= b.Verse)) {
		if v > t.cat.VerseCount(a.Book, c) {
			c, v = c+1, 1
			continue
		}
		out = append(out, SearchCode{Book: a.Book, Chapter: c, Verse: v})
		v++
	}
	return out
}
