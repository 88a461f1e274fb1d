// Package export writes parsed readings as CSV rows and as lectionary day
// entries in XML.
package export

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/FocuswithJustin/lectio/core/calendar"
	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/core/errors"
)

// Reading is one lectionary line: a citation and its liturgical comment.
type Reading struct {
	Link    string `json:"link"`
	Comment string `json:"comment"`
}

// Entry is one calendar day.
type Entry struct {
	Date          time.Time
	Holiday       bool
	Title         string
	Feast         string
	FeastingIndex int
	Readings      []Reading
}

// NewEntry returns an entry for day with the holiday flag and feast name
// taken from year.
func NewEntry(day time.Time, year *calendar.Year) Entry {
	e := Entry{Date: day, Holiday: year.IsHoliday(day)}
	if name, ok := year.Feast(day); ok {
		e.Feast = name
	}
	return e
}

// Classify returns the section of the book of the set's first location.
func Classify(cat *catalog.Catalog, set *citation.LocationSet) (catalog.Section, error) {
	if set == nil || len(set.Locations) == 0 {
		return "", errors.NewNotFound("location", "")
	}
	book := set.Locations[0].Book
	section := cat.Section(book)
	if section == "" {
		return "", &errors.UnsupportedError{Feature: "reading classification", Reason: fmt.Sprintf("book %d has no section", book)}
	}
	return section, nil
}

// Exporter renders readings against one catalog.
type Exporter struct {
	cat    *catalog.Catalog
	parser *citation.Parser
}

// New returns an Exporter. parser must have been built from cat.
func New(cat *catalog.Catalog, parser *citation.Parser) *Exporter {
	return &Exporter{cat: cat, parser: parser}
}

var csvHeader = []string{"citation", "book", "chapter", "filter", "section", "compact"}

// WriteCSV writes a header and one row per location of every set.
func (e *Exporter) WriteCSV(w io.Writer, sets []*citation.LocationSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.NewIO("write", "csv", err)
	}
	for _, set := range sets {
		for _, l := range set.Locations {
			name := strconv.Itoa(l.Book)
			if b, ok := e.cat.Book(l.Book); ok {
				name = b.ShortName
			}
			row := []string{
				set.Name,
				name,
				strconv.Itoa(l.Chapter),
				l.FormatFilter(),
				string(e.cat.Section(l.Book)),
				l.Compact(),
			}
			if err := cw.Write(row); err != nil {
				return errors.NewIO("write", "csv", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.NewIO("write", "csv", err)
	}
	return nil
}

type xmlEntry struct {
	XMLName       xml.Name `xml:"entry"`
	Holiday       bool     `xml:"h,attr"`
	Title         string   `xml:"t"`
	Feast         string   `xml:"f"`
	FeastingIndex int      `xml:"fi"`
	Old           xmlGroup `xml:"o"`
	Apostle       xmlGroup `xml:"a"`
	Gospel        xmlGroup `xml:"g"`
}

type xmlGroup struct {
	Readings []xmlReading `xml:"r"`
}

type xmlReading struct {
	Link    string `xml:"l"`
	Comment string `xml:"c"`
}

// WriteEntryXML validates every reading of entry, groups the readings by
// the section of their first book and writes the entry element. A reading
// that does not resolve fails the whole entry.
func (e *Exporter) WriteEntryXML(w io.Writer, entry Entry) error {
	out := xmlEntry{
		Holiday:       entry.Holiday,
		Title:         entry.Title,
		Feast:         entry.Feast,
		FeastingIndex: entry.FeastingIndex,
	}
	for _, r := range entry.Readings {
		set, err := e.parser.ParseStrict(r.Link)
		if err != nil {
			return errors.Wrapf(err, "reading %q", r.Link)
		}
		section, err := Classify(e.cat, set)
		if err != nil {
			return errors.Wrapf(err, "reading %q", r.Link)
		}
		x := xmlReading{Link: r.Link, Comment: r.Comment}
		switch section {
		case catalog.SectionOldTestament:
			out.Old.Readings = append(out.Old.Readings, x)
		case catalog.SectionApostle:
			out.Apostle.Readings = append(out.Apostle.Readings, x)
		case catalog.SectionGospel:
			out.Gospel.Readings = append(out.Gospel.Readings, x)
		}
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return errors.NewIO("write", "entry xml", err)
	}
	return enc.Close()
}

// ReadReadings reads "link,comment" CSV records. The comment column is
// optional; blank lines and lines starting with '#' are skipped.
func ReadReadings(r io.Reader) ([]Reading, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &errors.ParseError{Format: "readings CSV", Message: err.Error(), Err: err}
	}
	readings := make([]Reading, 0, len(records))
	for i, rec := range records {
		link := strings.TrimSpace(rec[0])
		if link == "" {
			return nil, errors.NewParse("readings CSV", "", fmt.Sprintf("record %d has no link", i+1))
		}
		rd := Reading{Link: link}
		if len(rec) > 1 {
			rd.Comment = strings.TrimSpace(strings.Join(rec[1:], ","))
		}
		readings = append(readings, rd)
	}
	return readings, nil
}
