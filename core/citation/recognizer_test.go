package citation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCodes(t *testing.T) {
	p := testParser(t)
	tests := []struct {
		name  string
		input string
		want  []SearchCode
	}{
		{"whole book", "Иуд", chapters(bookJude, 1)},
		{"whole book with dot", "Рол.", chapters(bookRollover, 1, 2, 3)},
		{"prefix name", "Иудиф. 3", chapters(bookJudith, 3)},
		{"chapter", "Лк. 2", chapters(bookLuke, 2)},
		{"chapter without dot", "Лк 2", chapters(bookLuke, 2)},
		{"chapter without space", "Лк.2", chapters(bookLuke, 2)},
		{"upper case", "ЛК. 2", chapters(bookLuke, 2)},
		{"chapter list", "Мф. 5, 7", chapters(bookMatthew, 5, 7)},
		{"chapter interval", "Мф. 5-7", chapters(bookMatthew, 5, 6, 7)},
		{"chapter interval spaced", "Мф. 5 - 7", chapters(bookMatthew, 5, 6, 7)},
		{"chapter interval then chapter", "Мф. 5-6, 9", chapters(bookMatthew, 5, 6, 9)},
		{"verse", "Мф. 5:3", verses(bookMatthew, 5, 3)},
		{"verse list", "Мф. 5:1,2", verses(bookMatthew, 5, 1, 2)},
		{"verse list spaced", "Мф. 5:1, 2", verses(bookMatthew, 5, 1, 2)},
		{"verse interval", "Мф. 5:3-5", span(bookMatthew, 5, 3, 5)},
		{"verse interval then verse", "Мф. 5:3-5, 7", verses(bookMatthew, 5, 3, 4, 5, 7)},
		{"verse interval spaced", "Рол. 1:20 - 22", span(bookRollover, 1, 20, 22)},
		{"verse then next chapter", "Мф. 5:3, 6:1", concat(verses(bookMatthew, 5, 3), verses(bookMatthew, 6, 1))},
		{"interval then next chapter", "Мф. 5:3-4, 6:1-2", concat(span(bookMatthew, 5, 3, 4), span(bookMatthew, 6, 1, 2))},
		{"chapter then verses", "Мф. 4, 5:2", concat(chapters(bookMatthew, 4), verses(bookMatthew, 5, 2))},
		{
			name:  "extended interval",
			input: "Рол. 1:24-2:3",
			want:  concat(span(bookRollover, 1, 24, 25), span(bookRollover, 2, 1, 3)),
		},
		{
			name:  "extended interval spaced",
			input: "Рол. 1:24 - 2:3",
			want:  concat(span(bookRollover, 1, 24, 25), span(bookRollover, 2, 1, 3)),
		},
		{
			name:  "verses continue in the chapter an extended interval ended in",
			input: "Рол. 1:25-2:1, 5",
			want:  concat(verses(bookRollover, 1, 25), verses(bookRollover, 2, 1, 5)),
		},
		{
			name:  "open chapter interval",
			input: "Рол. 1-2:2",
			want:  concat(chapters(bookRollover, 1), span(bookRollover, 1, 1, 25), span(bookRollover, 2, 1, 2)),
		},
		{
			name:  "several books",
			input: "Мф. 5:3; Лк. 2",
			want:  concat(verses(bookMatthew, 5, 3), chapters(bookLuke, 2)),
		},
		{"unknown book", "Xyz. 1:1", nil},
		{"chapter out of range", "Мф. 29", nil},
		{"reversed interval", "Мф. 5:5-3", nil},
		{"dangling comma keeps committed items", "Мф. 5,", chapters(bookMatthew, 5)},
		{"dangling dash", "Мф. 5-", nil},
		{"dangling colon", "Мф. 5:", nil},
		{"empty", "", nil},
		{"stray punctuation ignored", "Лк. 2!", chapters(bookLuke, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, p.Codes(tt.input)); diff != "" {
				t.Errorf("Codes(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestCodesSpacingEquivalence(t *testing.T) {
	p := testParser(t)
	pairs := [][2]string{
		{"Мф. 5:1,2", "Мф. 5:1, 2"},
		{"Мф. 5:1,2", "Мф. 5:1 ,2"},
		{"Мф. 5:1-3,7", "Мф. 5:1-3, 7"},
		{"Рол. 1:25-2:1,5", "Рол. 1:25-2:1, 5"},
		{"Мф. 5,6", "Мф. 5, 6"},
		{"Мф.5:3", "Мф 5:3"},
		{"Мф. 5:3", "Мф. 5 : 3"},
	}
	for _, pair := range pairs {
		if diff := cmp.Diff(p.Codes(pair[0]), p.Codes(pair[1])); diff != "" {
			t.Errorf("Codes(%q) and Codes(%q) differ:\n%s", pair[0], pair[1], diff)
		}
	}
}

func TestPositionString(t *testing.T) {
	tests := []struct {
		pos  position
		want string
	}{
		{posStart, "start"},
		{posBookName, "book-name"},
		{posSpanNext, "span-next"},
		{position(99), "position(99)"},
	}
	for _, tt := range tests {
		if got := tt.pos.String(); got != tt.want {
			t.Errorf("position(%d).String() = %q, want %q", int(tt.pos), got, tt.want)
		}
	}
	for p := posStart; p <= posSpanNext; p++ {
		if positionNames[p] == "" {
			t.Errorf("position %d has no name", int(p))
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		r    rune
		want charClass
	}{
		{'7', classDigit},
		{'ж', classLetter},
		{'Z', classLetter},
		{' ', classSpace},
		{'\t', classSpace},
		{'.', classDot},
		{',', classComma},
		{'-', classDash},
		{':', classColon},
		{';', classEnd},
		{'!', classOther},
	}
	for _, tt := range tests {
		if got := classify(tt.r); got != tt.want {
			t.Errorf("classify(%q) = %d, want %d", tt.r, got, tt.want)
		}
	}
}
