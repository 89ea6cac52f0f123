package contract

import (
	"testing"

	"github.com/mattn/go-runewidth"
)

// FuzzTruncateLabel fuzzes TruncateLabel with random labels and widths.
func FuzzTruncateLabel(f *testing.F) {
	seeds := []struct {
		label string
		width int
	}{
		{"earthquake | hits | city", 10},
		{"地震 | 発生 | 東京", 8},
		{"", 0},
		{"abc", 3},
		{"a very long subject label that keeps going", 40},
	}
	for _, seed := range seeds {
		f.Add(seed.label, seed.width)
	}

	f.Fuzz(func(t *testing.T, label string, width int) {
		width %= 200
		got := TruncateLabel(label, width)
		if width > 3 && runewidth.StringWidth(got) > width {
			t.Fatalf("TruncateLabel(%q, %d) = %q is wider than %d", label, width, got, width)
		}
	})
}
