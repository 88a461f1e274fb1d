package catalog

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/lectio/core/errors"
)

// Catalog XML layout:
//
//	<catalog name="synodal">
//	  <book ord="41" size="28" osis="Matt" section="gospel">
//	    <name_ru>От Матфея святое благовествование</name_ru>
//	    <shortname_ru>Мф</shortname_ru>
//	    <chapname_ru>Глава</chapname_ru>
//	    <name_cs>...</name_cs>
//	    <chapname_cs>...</chapname_cs>
//	    <chapters>
//	      <chapter ord="1" size="25"/>
//	      ...
//	    </chapters>
//	  </book>
//	</catalog>
//
// The <chapters> element is optional; books without it need a ChapterSource.
var (
	xpCatalog  = xpath.MustCompile("/catalog")
	xpBooks    = xpath.MustCompile("//book")
	xpChapters = xpath.MustCompile("chapters/chapter")
	xpName     = xpath.MustCompile("name_ru")
	xpShort    = xpath.MustCompile("shortname_ru")
	xpChapName = xpath.MustCompile("chapname_ru")
	xpCSName   = xpath.MustCompile("name_cs")
	xpCSChap   = xpath.MustCompile("chapname_cs")
	xpHasChaps = xpath.MustCompile("chapters")
)

// ReadXML parses a catalog document. Options are passed through to New.
func ReadXML(r io.Reader, opts ...Option) (*Catalog, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, &errors.ParseError{Format: "catalog XML", Message: err.Error(), Err: err}
	}

	if root := xmlquery.QuerySelector(doc, xpCatalog); root != nil {
		if name := root.SelectAttr("name"); name != "" {
			opts = append(opts, WithName(name))
		}
	}

	nodes := xmlquery.QuerySelectorAll(doc, xpBooks)
	if len(nodes) == 0 {
		return nil, errors.NewParse("catalog XML", "", "no <book> elements")
	}

	books := make([]Book, 0, len(nodes))
	for _, n := range nodes {
		b, err := bookFromNode(n)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return New(books, opts...)
}

func bookFromNode(n *xmlquery.Node) (Book, error) {
	ord, err := intAttr(n, "ord")
	if err != nil {
		return Book{}, err
	}
	size, err := intAttr(n, "size")
	if err != nil {
		return Book{}, err
	}

	b := Book{
		Ordinal:       ord,
		Chapters:      size,
		OSIS:          n.SelectAttr("osis"),
		Section:       Section(n.SelectAttr("section")),
		ShortName:     childText(n, xpShort),
		Name:          childText(n, xpName),
		ChapterName:   childText(n, xpChapName),
		CSName:        childText(n, xpCSName),
		CSChapterName: childText(n, xpCSChap),
	}

	if xmlquery.QuerySelector(n, xpHasChaps) == nil {
		return b, nil
	}
	chapters := xmlquery.QuerySelectorAll(n, xpChapters)
	b.Verses = make([]int, size)
	for _, ch := range chapters {
		cord, err := intAttr(ch, "ord")
		if err != nil {
			return Book{}, err
		}
		csize, err := intAttr(ch, "size")
		if err != nil {
			return Book{}, err
		}
		if cord < 1 || cord > size {
			return Book{}, errors.NewParse("catalog XML", "",
				fmt.Sprintf("book %d: chapter %d outside 1..%d", ord, cord, size))
		}
		b.Verses[cord-1] = csize
	}
	return b, nil
}

func intAttr(n *xmlquery.Node, name string) (int, error) {
	raw := n.SelectAttr(name)
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &errors.ParseError{
			Format:  "catalog XML",
			Message: fmt.Sprintf("<%s %s=%q>: not an integer", n.Data, name, raw),
			Err:     err,
		}
	}
	return v, nil
}

func childText(n *xmlquery.Node, expr *xpath.Expr) string {
	if c := xmlquery.QuerySelector(n, expr); c != nil {
		return strings.TrimSpace(c.InnerText())
	}
	return ""
}

type xmlCatalog struct {
	XMLName xml.Name  `xml:"catalog"`
	Name    string    `xml:"name,attr,omitempty"`
	Books   []xmlBook `xml:"book"`
}

type xmlBook struct {
	Ord           int           `xml:"ord,attr"`
	Size          int           `xml:"size,attr"`
	OSIS          string        `xml:"osis,attr,omitempty"`
	Section       string        `xml:"section,attr,omitempty"`
	Name          string        `xml:"name_ru,omitempty"`
	ShortName     string        `xml:"shortname_ru"`
	ChapterName   string        `xml:"chapname_ru,omitempty"`
	CSName        string        `xml:"name_cs,omitempty"`
	CSChapterName string        `xml:"chapname_cs,omitempty"`
	Chapters      *xmlChapterTb `xml:"chapters,omitempty"`
}

type xmlChapterTb struct {
	Chapters []xmlChapter `xml:"chapter"`
}

type xmlChapter struct {
	Ord  int `xml:"ord,attr"`
	Size int `xml:"size,attr"`
}

// WriteXML writes the catalog in the layout ReadXML accepts. Verse tables
// are written for every book whose counts are available; lazily sourced
// tables are loaded first.
func WriteXML(w io.Writer, c *Catalog) error {
	doc := xmlCatalog{Name: c.name}
	for i, b := range c.books {
		xb := xmlBook{
			Ord:           b.Ordinal,
			Size:          b.Chapters,
			OSIS:          b.OSIS,
			Section:       string(b.Section),
			Name:          b.Name,
			ShortName:     b.ShortName,
			ChapterName:   b.ChapterName,
			CSName:        b.CSName,
			CSChapterName: b.CSChapterName,
		}
		if verses, err := c.verses(i + 1); err == nil {
			xb.Chapters = &xmlChapterTb{}
			for ch, size := range verses {
				xb.Chapters.Chapters = append(xb.Chapters.Chapters, xmlChapter{Ord: ch + 1, Size: size})
			}
		}
		doc.Books = append(doc.Books, xb)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.NewIO("write", "catalog XML", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.NewIO("write", "catalog XML", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
