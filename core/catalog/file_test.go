package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ulikunitz/xz"

	lerrors "github.com/FocuswithJustin/lectio/core/errors"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"synodal.xml", FormatXML},
		{"/etc/lectio/Synodal.XML", FormatXML},
		{"synodal.xml.xz", FormatXMLXZ},
		{"catalog.db", FormatSQL},
		{"catalog.sqlite", FormatSQL},
		{"catalog.sqlite3", FormatSQL},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := DetectFormat("catalog.json"); !errors.Is(err, lerrors.ErrUnsupported) {
		t.Errorf("DetectFormat(json) error = %v, want ErrUnsupported", err)
	}
}

func TestLoadFileXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.xml")
	if err := os.WriteFile(path, []byte(sampleXML), 0o600); err != nil {
		t.Fatal(err)
	}
	c, closer, err := LoadFile(context.Background(), path, FileOptions{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	defer closer.Close()
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Name() != "sample" {
		t.Errorf("Name() = %q, want name from document", c.Name())
	}
}

func TestLoadFileXZ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "synodal.xml.xz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(DefaultXML()); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	f.Close()

	c, closer, err := LoadFile(context.Background(), path, FileOptions{})
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	defer closer.Close()

	def, _ := LoadDefault()
	if c.Fingerprint() != def.Fingerprint() {
		t.Error("xz catalog differs from bundled catalog")
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := LoadFile(context.Background(), filepath.Join(dir, "missing.xml"), FileOptions{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}
	if _, _, err := LoadFile(context.Background(), filepath.Join(dir, "missing.db"), FileOptions{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing db error = %v, want ErrNotExist", err)
	}

	bad := filepath.Join(dir, "bad.xml")
	if err := os.WriteFile(bad, []byte("<catalog/>"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, _, err := LoadFile(context.Background(), bad, FileOptions{})
	var pe *lerrors.ParseError
	if !errors.As(err, &pe) || pe.Path != bad {
		t.Errorf("LoadFile(bad) error = %v, want ParseError with path", err)
	}
}

func TestCatalogName(t *testing.T) {
	tests := map[string]string{
		"/etc/lectio/synodal.xml.xz": "synodal",
		"kjv.db":                     "kjv",
		"plain":                      "plain",
	}
	for in, want := range tests {
		if got := catalogName(in); got != want {
			t.Errorf("catalogName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSaveFile(t *testing.T) {
	def, err := LoadDefault()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	for _, name := range []string{"out.xml", "out.xml.xz", "out.sqlite"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := SaveFile(context.Background(), path, def); err != nil {
				t.Fatalf("SaveFile() error = %v", err)
			}
			got, closer, err := LoadFile(context.Background(), path, FileOptions{})
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			defer closer.Close()
			if got.Fingerprint() != def.Fingerprint() {
				t.Error("saved catalog differs from bundled catalog")
			}
			if got.VerseCount(51, 5) != 48 {
				t.Errorf("VerseCount(51, 5) = %d, want 48", got.VerseCount(51, 5))
			}
		})
	}

	if err := SaveFile(context.Background(), filepath.Join(dir, "out.json"), def); !errors.Is(err, lerrors.ErrUnsupported) {
		t.Errorf("SaveFile(json) error = %v, want ErrUnsupported", err)
	}
}
