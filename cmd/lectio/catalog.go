package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/FocuswithJustin/lectio/core/catalog"
	"github.com/FocuswithJustin/lectio/core/sqlite"
	"github.com/FocuswithJustin/lectio/internal/logging"
)

// catalogInfo describes a loaded catalog.
type catalogInfo struct {
	Name        string      `json:"name"`
	Source      string      `json:"source"`
	Books       int         `json:"books"`
	Chapters    int         `json:"chapters"`
	Verses      int         `json:"verses"`
	Fingerprint string      `json:"fingerprint"`
	SQLite      sqlite.Info `json:"sqlite"`
}

// CatalogInfoCmd describes the active catalog.
type CatalogInfoCmd struct {
	JSON bool `help:"Output as JSON"`
}

func (c *CatalogInfoCmd) Run(e *env) error {
	cat, source, closer, err := e.openCatalog()
	if err != nil {
		return err
	}
	defer closer.Close()
	if err := cat.RequireVerseCounts(); err != nil {
		return err
	}

	info := catalogInfo{
		Name:        cat.Name(),
		Source:      source,
		Books:       cat.Len(),
		Fingerprint: cat.Fingerprint(),
		SQLite:      sqlite.GetInfo(),
	}
	for _, b := range cat.Books() {
		info.Chapters += b.Chapters
		for ch := 1; ch <= b.Chapters; ch++ {
			info.Verses += cat.VerseCount(b.Ordinal, ch)
		}
	}

	if c.JSON {
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	tw := tabwriter.NewWriter(e.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", info.Name)
	fmt.Fprintf(tw, "Source:\t%s\n", info.Source)
	fmt.Fprintf(tw, "Books:\t%d\n", info.Books)
	fmt.Fprintf(tw, "Chapters:\t%d\n", info.Chapters)
	fmt.Fprintf(tw, "Verses:\t%d\n", info.Verses)
	fmt.Fprintf(tw, "Fingerprint:\t%s\n", info.Fingerprint)
	fmt.Fprintf(tw, "SQLite driver:\t%s (%s)\n", info.SQLite.DriverType, info.SQLite.Package)
	return tw.Flush()
}

// CatalogImportCmd converts a catalog between the XML, compressed XML and
// SQLite encodings.
type CatalogImportCmd struct {
	Source string `arg:"" help:"Catalog to read (.xml, .xml.xz, SQLite)" type:"existingfile"`
	Output string `arg:"" help:"File to write; the format follows the extension" type:"path"`
}

func (c *CatalogImportCmd) Run(e *env) error {
	cat, closer, err := catalog.LoadFile(e.ctx, c.Source, catalog.FileOptions{})
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := catalog.SaveFile(e.ctx, c.Output, cat); err != nil {
		return err
	}
	logging.Info("catalog imported", "source", c.Source, "output", c.Output, "books", cat.Len())
	fmt.Fprintf(e.stdout, "Wrote %d books to %s (fingerprint %s)\n", cat.Len(), c.Output, cat.Fingerprint())
	return nil
}
