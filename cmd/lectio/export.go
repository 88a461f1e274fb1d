package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/FocuswithJustin/lectio/core/calendar"
	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/export"
	"github.com/FocuswithJustin/lectio/internal/normalize"
)

// OutputFile writes to path, or to stdout when path is empty or "-".
type OutputFile struct {
	Output string `short:"o" help:"Output file (default: stdout)" type:"path"`
}

func (o OutputFile) open(e *env) (io.Writer, func() error, error) {
	if o.Output == "" || o.Output == "-" {
		return e.stdout, func() error { return nil }, nil
	}
	f, err := os.Create(o.Output)
	if err != nil {
		return nil, nil, errors.NewIO("create", o.Output, err)
	}
	return f, f.Close, nil
}

// ExportCSVCmd writes one CSV row per location of every citation.
type ExportCSVCmd struct {
	InputSource
	OutputFile
	Normalize bool `short:"n" help:"Clean raw lectionary links first"`
}

func (c *ExportCSVCmd) Run(e *env) error {
	inputs, err := c.read(e)
	if err != nil {
		return err
	}
	p, cat, closer, err := e.openParser()
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := cat.RequireVerseCounts(); err != nil {
		return err
	}

	sets := make([]*citation.LocationSet, 0, len(inputs))
	for _, in := range inputs {
		if c.Normalize {
			in = normalize.Link(in)
		}
		set, err := p.ParseStrict(in)
		if err != nil {
			return errors.Wrapf(err, "citation %q", in)
		}
		sets = append(sets, set)
	}

	w, done, err := c.open(e)
	if err != nil {
		return err
	}
	if err := export.New(cat, p).WriteCSV(w, sets); err != nil {
		done()
		return err
	}
	return done()
}

// ExportXMLCmd writes one lectionary day entry.
type ExportXMLCmd struct {
	OutputFile
	Date          string   `required:"" help:"Day of the entry (YYYY-MM-DD)"`
	Title         string   `help:"Day title"`
	FeastingIndex int      `name:"feasting-index" help:"Feasting index of the day"`
	Readings      string   `help:"CSV file of 'link,comment' readings ('-' for stdin)"`
	Links         []string `arg:"" optional:"" help:"Additional reading links without comments"`
}

func (c *ExportXMLCmd) Run(e *env) error {
	day, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return errors.NewValidation("date", fmt.Sprintf("%q is not YYYY-MM-DD", c.Date))
	}
	year, err := calendar.NewYear(day.Year())
	if err != nil {
		return err
	}

	var readings []export.Reading
	if c.Readings != "" {
		rs, err := c.readReadings(e)
		if err != nil {
			return err
		}
		readings = rs
	}
	for _, link := range c.Links {
		readings = append(readings, export.Reading{Link: link})
	}

	p, cat, closer, err := e.openParser()
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := cat.RequireVerseCounts(); err != nil {
		return err
	}

	entry := export.NewEntry(day, year)
	entry.Title = c.Title
	entry.FeastingIndex = c.FeastingIndex
	entry.Readings = readings

	w, done, err := c.open(e)
	if err != nil {
		return err
	}
	if err := export.New(cat, p).WriteEntryXML(w, entry); err != nil {
		done()
		return err
	}
	fmt.Fprintln(w)
	return done()
}

func (c *ExportXMLCmd) readReadings(e *env) ([]export.Reading, error) {
	if c.Readings == "-" {
		return export.ReadReadings(e.stdin)
	}
	f, err := os.Open(c.Readings)
	if err != nil {
		return nil, errors.NewIO("open", c.Readings, err)
	}
	defer f.Close()
	return export.ReadReadings(f)
}

// ExportInfoCmd writes the holiday flags of a year, one line per month.
type ExportInfoCmd struct {
	OutputFile
	Year int `required:"" help:"Civil year"`
}

func (c *ExportInfoCmd) Run(e *env) error {
	year, err := calendar.NewYear(c.Year)
	if err != nil {
		return err
	}
	w, done, err := c.open(e)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, year.Info())
	return done()
}

// ExportFeastsCmd lists the feasts of a year in date order.
type ExportFeastsCmd struct {
	Year int `required:"" help:"Civil year"`
}

func (c *ExportFeastsCmd) Run(e *env) error {
	feasts, err := calendar.Feasts(c.Year)
	if err != nil {
		return err
	}
	for _, f := range feasts {
		kind := "fixed"
		if f.Moveable {
			kind = "moveable"
		}
		fmt.Fprintf(e.stdout, "%s\t%s\t%s\n", f.Date.Format(time.DateOnly), kind, f.Name)
	}
	return nil
}
