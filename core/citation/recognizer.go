package citation

import (
	"strconv"
	"strings"
	"unicode"
)

// position is the recognizer's place in the citation grammar.
type position int

const (
	posStart            position = iota // nothing read yet
	posBookName                         // reading the book short name
	posAfterBook                        // book closed, expecting a chapter
	posChapter                          // reading chapter-1
	posAfterChapter                     // chapter-1 closed by a space
	posChapterRange                     // '-' after chapter-1
	posChapterEnd                       // reading chapter-2 of a chapter interval
	posAfterChapterEnd                  // chapter-2 closed by a space
	posVerses                           // ':' read, expecting verse-1
	posVerse                            // reading verse-1
	posAfterVerse                       // verse-1 closed by a space
	posVerseNext                        // ',' after a single verse
	posVerseRange                       // '-' directly after verse-1
	posVerseEnd                         // reading verse-2
	posAfterVerseEnd                    // verse-2 closed by a space
	posVerseEndNext                     // ',' after a verse interval
	posSpanDash                         // ' -' after verse-1: extended interval
	posSpanChapter                      // reading chapter-2 of an extended interval
	posAfterSpanChapter                 // chapter-2 closed by a space
	posSpanVerses                       // ':' after chapter-2
	posSpanVerse                        // reading verse-2 of an extended interval
	posAfterSpanVerse                   // verse-2 closed by a space
	posSpanNext                         // ',' after an extended interval
)

var positionNames = [...]string{
	posStart:            "start",
	posBookName:         "book-name",
	posAfterBook:        "after-book",
	posChapter:          "chapter",
	posAfterChapter:     "after-chapter",
	posChapterRange:     "chapter-range",
	posChapterEnd:       "chapter-end",
	posAfterChapterEnd:  "after-chapter-end",
	posVerses:           "verses",
	posVerse:            "verse",
	posAfterVerse:       "after-verse",
	posVerseNext:        "verse-next",
	posVerseRange:       "verse-range",
	posVerseEnd:         "verse-end",
	posAfterVerseEnd:    "after-verse-end",
	posVerseEndNext:     "verse-end-next",
	posSpanDash:         "span-dash",
	posSpanChapter:      "span-chapter",
	posAfterSpanChapter: "after-span-chapter",
	posSpanVerses:       "span-verses",
	posSpanVerse:        "span-verse",
	posAfterSpanVerse:   "after-span-verse",
	posSpanNext:         "span-next",
}

func (p position) String() string {
	if p >= 0 && int(p) < len(positionNames) {
		return positionNames[p]
	}
	return "position(" + strconv.Itoa(int(p)) + ")"
}

// charClass partitions input runes; everything else is ignored.
type charClass int

const (
	classOther charClass = iota
	classLetter
	classDigit
	classSpace
	classDot
	classComma
	classDash
	classColon
	classEnd
)

const terminator = ';'

func classify(r rune) charClass {
	switch {
	case r >= '0' && r <= '9':
		return classDigit
	case r == terminator:
		return classEnd
	case r == '.':
		return classDot
	case r == ',':
		return classComma
	case r == '-':
		return classDash
	case r == ':':
		return classColon
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r):
		return classLetter
	}
	return classOther
}

// recognizer scans one book group. It is single use.
type recognizer struct {
	cat Catalog
	tr  *Transformer

	pos    position
	name   strings.Builder
	digits strings.Builder

	book         int
	chap1, chap2 int
	line1, line2 int

	out       []SearchCode
	committed bool
}

func newRecognizer(cat Catalog, tr *Transformer) *recognizer {
	return &recognizer{cat: cat, tr: tr, chap1: -1, chap2: -1, line1: -1, line2: -1}
}

// scanSegment returns the codes of one ';'-free book group.
func scanSegment(cat Catalog, tr *Transformer, segment string) []SearchCode {
	r := newRecognizer(cat, tr)
	for _, c := range strings.ToLower(segment) + string(terminator) {
		if r.step(c) {
			break
		}
	}
	return r.out
}

// step consumes one rune and reports whether the segment is finished.
func (r *recognizer) step(c rune) bool {
	switch classify(c) {
	case classLetter:
		r.letter(c)
	case classDigit:
		r.digit(c)
	case classSpace:
		r.space()
	case classDot:
		if r.pos == posBookName {
			r.closeBook()
		}
	case classComma:
		r.comma()
	case classDash:
		r.dash()
	case classColon:
		r.colon()
	case classEnd:
		r.end()
		return true
	case classOther:
	}
	return false
}

func (r *recognizer) letter(c rune) {
	switch r.pos {
	case posStart:
		r.pos = posBookName
		r.name.WriteRune(c)
	case posBookName:
		r.name.WriteRune(c)
	}
}

func (r *recognizer) digit(c rune) {
	switch r.pos {
	case posStart:
		r.pos = posBookName
		r.name.WriteRune(c)
	case posAfterBook:
		r.startNumber(posChapter, c)
	case posChapterRange:
		r.startNumber(posChapterEnd, c)
	case posVerses, posVerseNext, posVerseEndNext:
		r.startNumber(posVerse, c)
	case posVerseRange:
		r.startNumber(posVerseEnd, c)
	case posSpanDash:
		r.startNumber(posSpanChapter, c)
	case posSpanVerses:
		r.startNumber(posSpanVerse, c)
	case posSpanNext:
		// A verse list continues in the chapter the interval ended in.
		r.chap1 = r.chap2
		r.startNumber(posVerse, c)
	case posChapter, posChapterEnd, posVerse, posVerseEnd, posSpanChapter, posSpanVerse:
		r.digits.WriteRune(c)
	}
}

func (r *recognizer) space() {
	switch r.pos {
	case posBookName:
		r.closeBook()
	case posChapter:
		r.chap1 = r.number()
		r.pos = posAfterChapter
	case posChapterEnd:
		r.chap2 = r.number()
		r.pos = posAfterChapterEnd
	case posVerse:
		r.line1 = r.number()
		r.pos = posAfterVerse
	case posVerseEnd:
		r.line2 = r.number()
		r.pos = posAfterVerseEnd
	case posSpanChapter:
		r.chap2 = r.number()
		r.pos = posAfterSpanChapter
	case posSpanVerse:
		r.line2 = r.number()
		r.pos = posAfterSpanVerse
	}
}

func (r *recognizer) comma() {
	switch r.pos {
	case posChapter:
		r.chap1 = r.number()
		r.commitChapter()
		r.pos = posAfterBook
	case posAfterChapter:
		r.commitChapter()
		r.pos = posAfterBook
	case posChapterEnd:
		r.chap2 = r.number()
		r.commitChapterInterval()
		r.pos = posAfterBook
	case posAfterChapterEnd:
		r.commitChapterInterval()
		r.pos = posAfterBook
	case posVerse:
		r.line1 = r.number()
		r.commitVerse()
		r.pos = posVerseNext
	case posAfterVerse:
		r.commitVerse()
		r.pos = posVerseNext
	case posVerseEnd:
		r.line2 = r.number()
		r.commitVerseInterval()
		r.pos = posVerseEndNext
	case posAfterVerseEnd:
		r.commitVerseInterval()
		r.pos = posVerseEndNext
	case posSpanChapter:
		r.line2 = r.number()
		r.commitVerseInterval()
		r.pos = posVerseEndNext
	case posAfterSpanChapter:
		r.line2 = r.chap2
		r.commitVerseInterval()
		r.pos = posVerseEndNext
	case posSpanVerse:
		r.line2 = r.number()
		r.commitSpan()
		r.pos = posSpanNext
	case posAfterSpanVerse:
		r.commitSpan()
		r.pos = posSpanNext
	}
}

func (r *recognizer) dash() {
	switch r.pos {
	case posChapter:
		r.chap1 = r.number()
		r.pos = posChapterRange
	case posAfterChapter:
		r.pos = posChapterRange
	case posVerse:
		r.line1 = r.number()
		r.pos = posVerseRange
	case posAfterVerse:
		r.pos = posSpanDash
	}
}

func (r *recognizer) colon() {
	switch r.pos {
	case posChapter:
		r.chap1 = r.number()
		r.pos = posVerses
	case posAfterChapter:
		r.pos = posVerses
	case posVerse:
		// The number read as a verse was the next chapter.
		r.chap1 = r.number()
		r.pos = posVerses
	case posAfterVerse:
		r.chap1 = r.line1
		r.pos = posVerses
	case posChapterEnd:
		r.chap2 = r.number()
		r.line1 = 0
		r.pos = posSpanVerses
	case posAfterChapterEnd:
		r.line1 = 0
		r.pos = posSpanVerses
	case posVerseEnd:
		r.chap2 = r.number()
		r.pos = posSpanVerses
	case posAfterVerseEnd:
		r.chap2 = r.line2
		r.pos = posSpanVerses
	case posSpanChapter:
		r.chap2 = r.number()
		r.pos = posSpanVerses
	case posAfterSpanChapter:
		r.pos = posSpanVerses
	}
}

func (r *recognizer) end() {
	switch r.pos {
	case posBookName:
		r.closeBook()
		r.commitBook()
	case posAfterBook:
		if !r.committed {
			r.commitBook()
		}
	case posChapter:
		r.chap1 = r.number()
		r.commitChapter()
	case posAfterChapter:
		r.commitChapter()
	case posChapterEnd:
		r.chap2 = r.number()
		r.commitChapterInterval()
	case posAfterChapterEnd:
		r.commitChapterInterval()
	case posVerse:
		r.line1 = r.number()
		r.commitVerse()
	case posAfterVerse:
		r.commitVerse()
	case posVerseEnd:
		r.line2 = r.number()
		r.commitVerseInterval()
	case posAfterVerseEnd:
		r.commitVerseInterval()
	case posSpanChapter:
		r.line2 = r.number()
		r.commitVerseInterval()
	case posAfterSpanChapter:
		r.line2 = r.chap2
		r.commitVerseInterval()
	case posSpanVerse:
		r.line2 = r.number()
		r.commitSpan()
	case posAfterSpanVerse:
		r.commitSpan()
	case posStart, posChapterRange, posVerses, posVerseNext, posVerseRange,
		posVerseEndNext, posSpanDash, posSpanVerses, posSpanNext:
	}
}

func (r *recognizer) startNumber(next position, c rune) {
	r.digits.Reset()
	r.digits.WriteRune(c)
	r.pos = next
}

// number returns the pending digits, or -1 if they do not form an int.
func (r *recognizer) number() int {
	n, err := strconv.Atoi(r.digits.String())
	if err != nil {
		return -1
	}
	return n
}

func (r *recognizer) closeBook() {
	r.book, _ = r.cat.BookOrdinal(r.name.String())
	r.pos = posAfterBook
}

func (r *recognizer) emit(codes []SearchCode) {
	r.out = append(r.out, codes...)
	r.committed = true
}

func (r *recognizer) commitBook() {
	r.emit(r.tr.ExpandSingle(SearchCode{Book: r.book}))
}

func (r *recognizer) commitChapter() {
	r.emit(r.tr.ExpandSingle(SearchCode{Book: r.book, Chapter: r.chap1}))
}

func (r *recognizer) commitChapterInterval() {
	r.emit(r.tr.ExpandInterval(
		SearchCode{Book: r.book, Chapter: r.chap1},
		SearchCode{Book: r.book, Chapter: r.chap2}))
}

func (r *recognizer) commitVerse() {
	r.emit(r.tr.ExpandSingle(SearchCode{Book: r.book, Chapter: r.chap1, Verse: r.line1}))
}

func (r *recognizer) commitVerseInterval() {
	r.emit(r.tr.ExpandInterval(
		SearchCode{Book: r.book, Chapter: r.chap1, Verse: r.line1},
		SearchCode{Book: r.book, Chapter: r.chap1, Verse: r.line2}))
}

func (r *recognizer) commitSpan() {
	r.emit(r.tr.ExpandInterval(
		SearchCode{Book: r.book, Chapter: r.chap1, Verse: r.line1},
		SearchCode{Book: r.book, Chapter: r.chap2, Verse: r.line2}))
}
