package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/batch"
	"github.com/FocuswithJustin/lectio/internal/normalize"
)

// InputSource collects citations from arguments and an optional file.
type InputSource struct {
	Citations []string `arg:"" optional:"" help:"Citations; one argument per citation"`
	File      string   `short:"f" help:"Read one citation per line from a file ('-' for stdin)"`
}

func (s InputSource) read(e *env) ([]string, error) {
	inputs := append([]string(nil), s.Citations...)
	if s.File != "" {
		lines, err := readLines(s.File, e.stdin)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, lines...)
	}
	if len(inputs) == 0 {
		return nil, errors.NewValidation("citations", "no citations given")
	}
	return inputs, nil
}

// readLines returns the non-blank lines of path that do not start with '#'.
func readLines(path string, stdin io.Reader) ([]string, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.NewIO("open", path, err)
		}
		defer f.Close()
		r = f
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	return lines, nil
}

// ParseCmd parses citations into locations.
type ParseCmd struct {
	InputSource
	Strict    bool   `help:"Reject malformed citations before resolving"`
	Normalize bool   `short:"n" help:"Clean raw lectionary links first"`
	Format    string `default:"text" enum:"text,json,compact,osis" help:"Output format (text, json, compact, osis)"`
	Workers   int    `help:"Parallel workers (default: batch.workers)"`
}

// parseOutput is the JSON form of a parse run.
type parseOutput struct {
	Results []batch.Result `json:"results"`
	Summary batch.Summary  `json:"summary"`
}

func (c *ParseCmd) Run(e *env) error {
	inputs, err := c.read(e)
	if err != nil {
		return err
	}
	p, cat, closer, err := e.openParser()
	if err != nil {
		return err
	}
	defer closer.Close()
	// Workers cannot recover a missing verse table.
	if err := cat.RequireVerseCounts(); err != nil {
		return err
	}

	workers := c.Workers
	if workers == 0 {
		workers = e.cfg.Batch.Workers
	}
	results, err := batch.ParseAll(e.ctx, p, inputs, batch.Options{
		Workers:   workers,
		Strict:    c.Strict,
		Normalize: c.Normalize,
	})
	if err != nil {
		return err
	}
	summary := batch.Summarize(results)

	switch c.Format {
	case "json":
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(parseOutput{Results: results, Summary: summary}); err != nil {
			return err
		}
	case "compact":
		for _, r := range results {
			fmt.Fprintln(e.stdout, r.Compact)
		}
	case "osis":
		for _, r := range results {
			if r.Status != batch.StatusOK {
				fmt.Fprintln(e.stdout)
				continue
			}
			set := citation.NewLocationSet(r.Citation, r.Locations)
			fmt.Fprintln(e.stdout, strings.Join(set.OSIS(cat), " "))
		}
	default:
		writeParseText(e.stdout, cat, results)
	}

	if c.Strict && summary.OK != summary.Total {
		return fmt.Errorf("%d of %d citations failed", summary.Total-summary.OK, summary.Total)
	}
	return nil
}

func writeParseText(w io.Writer, cat *catalog.Catalog, results []batch.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	for _, r := range results {
		switch r.Status {
		case batch.StatusOK:
			set := citation.NewLocationSet(r.Citation, r.Locations)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Citation, set.Citation(cat), r.Compact)
		case batch.StatusNotFound:
			fmt.Fprintf(tw, "%s\tnot found\t\n", r.Citation)
		default:
			fmt.Fprintf(tw, "%s\tinvalid: %s\t\n", r.Citation, r.Error)
		}
	}
}

// ValidateCmd checks citation syntax without resolving it.
type ValidateCmd struct {
	InputSource
	Normalize bool `short:"n" help:"Clean raw lectionary links first"`
}

func (c *ValidateCmd) Run(e *env) error {
	inputs, err := c.read(e)
	if err != nil {
		return err
	}
	p, _, closer, err := e.openParser()
	if err != nil {
		return err
	}
	defer closer.Close()

	failed := 0
	for _, in := range inputs {
		if c.Normalize {
			in = normalize.Link(in)
		}
		if err := p.Validate(in); err != nil {
			failed++
			fmt.Fprintf(e.stdout, "invalid\t%s\t%v\n", in, err)
			continue
		}
		fmt.Fprintf(e.stdout, "ok\t%s\n", in)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d citations invalid", failed, len(inputs))
	}
	return nil
}

// PatternCmd prints the regular expression citations are validated with.
type PatternCmd struct{}

func (c *PatternCmd) Run(e *env) error {
	p, _, closer, err := e.openParser()
	if err != nil {
		return err
	}
	defer closer.Close()
	fmt.Fprintln(e.stdout, p.Pattern())
	return nil
}

// CodesCmd prints the book.chapter.verse codes a citation expands to.
type CodesCmd struct {
	Citation []string `arg:"" help:"Citation; multiple arguments are joined with spaces"`
}

func (c *CodesCmd) Run(e *env) error {
	p, cat, closer, err := e.openParser()
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := cat.RequireVerseCounts(); err != nil {
		return err
	}
	s := strings.Join(c.Citation, " ")
	codes := p.Codes(s)
	if len(codes) == 0 {
		return errors.NewNotFound("citation", s)
	}
	for _, code := range codes {
		fmt.Fprintln(e.stdout, code)
	}
	return nil
}

// BooksCmd lists the catalog's books.
type BooksCmd struct {
	Section string `help:"Only books of this section (ot, apostle, gospel)"`
}

func (c *BooksCmd) Run(e *env) error {
	if c.Section != "" && !catalog.Section(c.Section).Valid() {
		return errors.NewValidation("section", fmt.Sprintf("unknown section %q", c.Section))
	}
	cat, _, closer, err := e.openCatalog()
	if err != nil {
		return err
	}
	defer closer.Close()

	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORD\tSHORT\tNAME\tOSIS\tSECTION\tCHAPTERS")
	for _, b := range cat.Books() {
		if c.Section != "" && string(b.Section) != c.Section {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", b.Ordinal, b.ShortName, b.Name, b.OSIS, b.Section, b.Chapters)
	}
	return tw.Flush()
}
