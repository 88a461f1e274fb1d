package citation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAssemble(t *testing.T) {
	tests := []struct {
		name  string
		codes []SearchCode
		want  []Location
	}{
		{"empty", nil, nil},
		{"whole chapter", chapters(bookLuke, 2), []Location{{Book: bookLuke, Chapter: 2}}},
		{
			name:  "verses sorted without duplicates",
			codes: verses(bookMatthew, 5, 7, 3, 5, 3),
			want:  []Location{{Book: bookMatthew, Chapter: 5, Filter: []int{3, 5, 7}}},
		},
		{
			name:  "verses after whole chapter start a new filter",
			codes: concat(chapters(bookMatthew, 5), verses(bookMatthew, 5, 3, 4)),
			want:  []Location{{Book: bookMatthew, Chapter: 5, Filter: []int{3, 4}}},
		},
		{
			name:  "whole chapter drops verses before it",
			codes: concat(verses(bookMatthew, 5, 3), chapters(bookMatthew, 5)),
			want:  []Location{{Book: bookMatthew, Chapter: 5}},
		},
		{
			name:  "verses before whole chapter are not kept",
			codes: concat(verses(bookMatthew, 5, 3), chapters(bookMatthew, 5), verses(bookMatthew, 5, 7)),
			want:  []Location{{Book: bookMatthew, Chapter: 5, Filter: []int{7}}},
		},
		{
			name:  "runs split on chapter change",
			codes: concat(verses(bookMatthew, 5, 1), verses(bookMatthew, 6, 1), verses(bookMatthew, 5, 2)),
			want: []Location{
				{Book: bookMatthew, Chapter: 5, Filter: []int{1}},
				{Book: bookMatthew, Chapter: 6, Filter: []int{1}},
				{Book: bookMatthew, Chapter: 5, Filter: []int{2}},
			},
		},
		{
			name:  "runs split on book change",
			codes: concat(verses(bookMatthew, 2, 1), verses(bookLuke, 2, 1)),
			want: []Location{
				{Book: bookMatthew, Chapter: 2, Filter: []int{1}},
				{Book: bookLuke, Chapter: 2, Filter: []int{1}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Assemble(tt.codes)); diff != "" {
				t.Errorf("Assemble() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLocationContains(t *testing.T) {
	whole := Location{Book: bookLuke, Chapter: 2}
	if !whole.Whole() || !whole.Contains(52) {
		t.Error("whole chapter should contain every verse")
	}
	l := Location{Book: bookMatthew, Chapter: 5, Filter: []int{3, 4, 5, 7}}
	if l.Whole() {
		t.Error("filtered location reported as whole")
	}
	for v, want := range map[int]bool{1: false, 3: true, 5: true, 6: false, 7: true, 8: false} {
		if got := l.Contains(v); got != want {
			t.Errorf("Contains(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestNewLocationSet(t *testing.T) {
	set := NewLocationSet("Лк. 2", []Location{{Book: bookLuke, Chapter: 2}})
	if set.Current != 0 {
		t.Errorf("Current = %d, want 0", set.Current)
	}
	if set.ScrollRatio >= 0 {
		t.Errorf("ScrollRatio = %v, want negative", set.ScrollRatio)
	}
	if set.Name != "Лк. 2" {
		t.Errorf("Name = %q", set.Name)
	}
}
