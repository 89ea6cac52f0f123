package algo

import (
	"testing"
	"time"

	"github.com/huangsam/burstline/schema"
)

// FuzzReduce checks that every day in the offset window gets exactly one entry,
// that the first entry is baseline and that no entry exceeds the highest burst level.
func FuzzReduce(f *testing.F) {
	f.Add(int64(0), int64(86400*3), int64(3600), int64(86400), 2)
	f.Add(int64(1700000000), int64(1700000000), int64(0), int64(0), 0)
	f.Add(int64(-86400), int64(86400*40), int64(-7200), int64(86400*2), 7)

	f.Fuzz(func(t *testing.T, a, b, burstStart, burstLen int64, level int) {
		const span = int64(86400 * 400)
		a, b = a%span, b%span
		burstStart %= span
		if burstLen < 0 {
			burstLen = -burstLen
		}
		burstLen %= span
		if level < 0 {
			level = -level
		}
		level %= 16

		offsets := []time.Time{time.Unix(a, 0), time.Unix(b, 0), time.Unix((a+b)/2, 0)}
		bursts := []schema.Burst{
			{Level: level, Start: time.Unix(burstStart, 0), End: time.Unix(burstStart+burstLen, 0)},
		}

		entries, err := Reduce(offsets, bursts, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lo, hi := min(a, b), max(a, b)
		first := FloorToDay(time.Unix(lo, 0), nil)
		last := FloorToDay(time.Unix(hi, 0), nil)
		wantDays := int(last.Sub(first)/(24*time.Hour)) + 1
		if len(entries) != wantDays {
			t.Fatalf("got %d entries, want %d", len(entries), wantDays)
		}
		if entries[0].Level != 0 {
			t.Fatalf("first entry level %d, want 0", entries[0].Level)
		}
		if !entries[0].Boundary.Equal(first) || !entries[len(entries)-1].Boundary.Equal(last) {
			t.Fatalf("entries span %v..%v, want %v..%v", entries[0].Boundary, entries[len(entries)-1].Boundary, first, last)
		}
		for i, e := range entries {
			if e.Level < 0 || e.Level > level {
				t.Fatalf("entry %d level %d outside [0, %d]", i, e.Level, level)
			}
		}
	})
}
