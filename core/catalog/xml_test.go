package catalog

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	lerrors "github.com/FocuswithJustin/lectio/core/errors"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<catalog name="sample">
  <book ord="2" size="2" osis="Luke" section="gospel">
    <name_ru>От Луки святое благовествование</name_ru>
    <shortname_ru>Лк</shortname_ru>
    <chapname_ru>Глава</chapname_ru>
    <chapters>
      <chapter ord="2" size="52"/>
      <chapter ord="1" size="80"/>
    </chapters>
  </book>
  <book ord="1" size="3" osis="Matt" section="gospel">
    <name_ru>От Матфея святое благовествование</name_ru>
    <shortname_ru> Мф </shortname_ru>
    <chapname_ru>Глава</chapname_ru>
    <name_cs>Отъ Матѳеа</name_cs>
    <chapname_cs>Глава</chapname_cs>
  </book>
</catalog>
`

func TestReadXML(t *testing.T) {
	c, err := ReadXML(strings.NewReader(sampleXML))
	if err != nil {
		t.Fatalf("ReadXML() error = %v", err)
	}
	if got := c.Name(); got != "sample" {
		t.Errorf("Name() = %q, want sample", got)
	}

	want := []Book{
		{Ordinal: 1, ShortName: "Мф", Name: "От Матфея святое благовествование", OSIS: "Matt", Section: SectionGospel,
			ChapterName: "Глава", CSName: "Отъ Матѳеа", CSChapterName: "Глава", Chapters: 3},
		{Ordinal: 2, ShortName: "Лк", Name: "От Луки святое благовествование", OSIS: "Luke", Section: SectionGospel,
			ChapterName: "Глава", Chapters: 2, Verses: []int{80, 52}},
	}
	if diff := cmp.Diff(want, c.Books()); diff != "" {
		t.Errorf("Books() mismatch (-want +got):\n%s", diff)
	}
	if c.HasVerseCounts(1) {
		t.Error("HasVerseCounts(1) = true for book without <chapters>")
	}
}

func TestReadXMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"malformed", `<catalog><book`, lerrors.ErrInvalidInput},
		{"no books", `<catalog/>`, lerrors.ErrInvalidInput},
		{"bad ordinal", `<catalog><book ord="x" size="1"><shortname_ru>А</shortname_ru></book></catalog>`, nil},
		{"chapter out of range", `<catalog><book ord="1" size="1"><shortname_ru>А</shortname_ru><chapters><chapter ord="2" size="3"/></chapters></book></catalog>`, lerrors.ErrInvalidInput},
		{"missing chapter", `<catalog><book ord="1" size="2"><shortname_ru>А</shortname_ru><chapters><chapter ord="1" size="3"/></chapters></book></catalog>`, lerrors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadXML(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("ReadXML() error = nil, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("ReadXML() error = %v, want %v", err, tt.want)
			}
			var pe *lerrors.ParseError
			var ve *lerrors.ValidationError
			if !errors.As(err, &pe) && !errors.As(err, &ve) {
				t.Errorf("ReadXML() error type = %T, want ParseError or ValidationError", err)
			}
		})
	}
}

func TestWriteXMLRoundTrip(t *testing.T) {
	orig := mustNew(t, smallBooks(), WithName("small"))

	var buf bytes.Buffer
	if err := WriteXML(&buf, orig); err != nil {
		t.Fatalf("WriteXML() error = %v", err)
	}
	back, err := ReadXML(&buf)
	if err != nil {
		t.Fatalf("ReadXML() error = %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(orig.Books(), back.Books()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if back.Name() != "small" {
		t.Errorf("Name() = %q, want small", back.Name())
	}
	if orig.Fingerprint() != back.Fingerprint() {
		t.Error("Fingerprint changed across XML round trip")
	}
}
