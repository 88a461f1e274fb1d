package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/core/sqlite"
)

// FileOptions controls LoadFile.
type FileOptions struct {
	// Lazy keeps a SQLite catalog open and loads verse counts per book on
	// first use. It has no effect on XML catalogs.
	Lazy bool
}

// Format identifies a catalog file encoding.
type Format string

const (
	FormatXML   Format = "xml"
	FormatXMLXZ Format = "xml.xz"
	FormatSQL   Format = "sqlite"
)

// DetectFormat infers the catalog format from a file name.
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xml.xz"), strings.HasSuffix(lower, ".xz"):
		return FormatXMLXZ, nil
	case strings.HasSuffix(lower, ".xml"):
		return FormatXML, nil
	case strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"):
		return FormatSQL, nil
	}
	return "", errors.NewUnsupported("catalog format", filepath.Ext(path))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// LoadFile loads a catalog from an .xml, .xml.xz or SQLite file. The
// returned Closer releases resources that a lazy catalog still needs and
// must be closed once the catalog is no longer used.
func LoadFile(ctx context.Context, path string, opts FileOptions) (*Catalog, io.Closer, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, nil, err
	}

	if format == FormatSQL {
		return loadSQLite(ctx, path, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.NewIO("open", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if format == FormatXMLXZ {
		xzr, err := xz.NewReader(f)
		if err != nil {
			return nil, nil, errors.NewIO("decompress", path, err)
		}
		r = xzr
	}

	cat, err := ReadXML(r, WithName(catalogName(path)))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, nil, err
	}
	return cat, nopCloser{}, nil
}

func loadSQLite(ctx context.Context, path string, opts FileOptions) (*Catalog, io.Closer, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, errors.NewIO("open", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, nil, errors.NewIO("open", path, err)
	}
	cat, err := LoadCatalog(ctx, db, opts.Lazy)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if opts.Lazy {
		return cat, db, nil
	}
	if err := db.Close(); err != nil {
		return nil, nil, errors.NewIO("close", path, err)
	}
	return cat, nopCloser{}, nil
}

// catalogName derives a default label from the file name, e.g.
// "/etc/lectio/synodal.xml.xz" -> "synodal".
func catalogName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// SaveFile writes c to path in the format DetectFormat infers from it. An
// existing XML file is replaced; an existing SQLite catalog is overwritten
// in place.
func SaveFile(ctx context.Context, path string, c *Catalog) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	if format == FormatSQL {
		db, err := sqlite.Open(path)
		if err != nil {
			return errors.NewIO("open", path, err)
		}
		if err := SaveCatalog(ctx, db, c); err != nil {
			db.Close()
			return err
		}
		if err := db.Close(); err != nil {
			return errors.NewIO("close", path, err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.NewIO("create", path, err)
	}
	defer f.Close()

	var w io.WriteCloser = nopWriteCloser{f}
	if format == FormatXMLXZ {
		xzw, err := xz.NewWriter(f)
		if err != nil {
			return errors.NewIO("compress", path, err)
		}
		w = xzw
	}
	if err := WriteXML(w, c); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return errors.NewIO("compress", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIO("close", path, err)
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
