package catalog

import "testing"

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	if got := c.Len(); got != 77 {
		t.Fatalf("Len() = %d, want 77", got)
	}
	if got := c.Name(); got != "synodal" {
		t.Errorf("Name() = %q, want synodal", got)
	}
	if err := c.RequireVerseCounts(); err != nil {
		t.Fatalf("RequireVerseCounts() error = %v", err)
	}

	again, _ := LoadDefault()
	if again != c {
		t.Error("LoadDefault() returned a different catalog on second call")
	}

	tests := []struct {
		short    string
		ord      int
		chapters int
		section  Section
	}{
		{"Быт", 1, 50, SectionOldTestament},
		{"Пс", 22, 151, SectionOldTestament},
		{"Дан", 34, 14, SectionOldTestament},
		{"3Ездр", 50, 16, SectionOldTestament},
		{"Мф", 51, 28, SectionGospel},
		{"Ин", 54, 21, SectionGospel},
		{"Деян", 55, 28, SectionApostle},
		{"Иуд", 62, 1, SectionApostle},
		{"Откр", 77, 22, SectionApostle},
	}
	for _, tt := range tests {
		ord, ok := c.BookOrdinal(tt.short)
		if !ok || ord != tt.ord {
			t.Errorf("BookOrdinal(%q) = %d, %v; want %d", tt.short, ord, ok, tt.ord)
			continue
		}
		if got := c.ChapterCount(ord); got != tt.chapters {
			t.Errorf("ChapterCount(%s) = %d, want %d", tt.short, got, tt.chapters)
		}
		if got := c.Section(ord); got != tt.section {
			t.Errorf("Section(%s) = %q, want %q", tt.short, got, tt.section)
		}
	}

	if got := c.VerseCount(51, 5); got != 48 {
		t.Errorf("VerseCount(Мф, 5) = %d, want 48", got)
	}
	if got := c.VerseCount(22, 119); got != 176 {
		t.Errorf("VerseCount(Пс, 119) = %d, want 176", got)
	}
	if got := c.ChapterTitle(22, 50); got != "Псалом 50" {
		t.Errorf("ChapterTitle(Пс, 50) = %q", got)
	}
}

func TestDefaultXMLIsCopy(t *testing.T) {
	a := DefaultXML()
	a[0] = 'x'
	if DefaultXML()[0] == 'x' {
		t.Error("DefaultXML() exposes the embedded buffer")
	}
}
