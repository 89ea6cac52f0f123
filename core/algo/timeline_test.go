package algo

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/huangsam/burstline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// day returns midnight UTC of the given day in March 2024, plus optional clock offsets.
func day(d int, clock ...time.Duration) time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	for _, c := range clock {
		t = t.Add(c)
	}
	return t
}

// dailyOffsets returns one offset at noon on each day from first to last.
func dailyOffsets(first, last int) []time.Time {
	var out []time.Time
	for d := first; d <= last; d++ {
		out = append(out, day(d, 12*time.Hour))
	}
	return out
}

func levels(entries []schema.TimelineEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Level
	}
	return out
}

func TestFloorToDay(t *testing.T) {
	assert.Equal(t, day(4), FloorToDay(day(4, 23*time.Hour+59*time.Minute), nil))
	assert.Equal(t, day(4), FloorToDay(day(4), time.UTC))

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// 02:00 UTC on the 4th is still the 3rd in New York.
	floored := FloorToDay(day(4, 2*time.Hour), ny)
	assert.Equal(t, 3, floored.Day())
	assert.Equal(t, 0, floored.Hour())
	assert.Equal(t, ny, floored.Location())
}

func TestBuildDayBuckets(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := BuildDayBuckets(nil, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("single offset", func(t *testing.T) {
		buckets, err := BuildDayBuckets([]time.Time{day(7, 9*time.Hour)}, nil)
		require.NoError(t, err)
		require.Len(t, buckets, 1)
		assert.Equal(t, day(7), buckets[0].Start)
		assert.True(t, buckets[0].IsOpen())
		assert.Equal(t, 1, buckets[0].Count)
	})

	t.Run("gaps are filled and counted as zero", func(t *testing.T) {
		offsets := []time.Time{
			day(5, 23*time.Hour),
			day(1, time.Hour),
			day(1, 2*time.Hour),
			day(5, time.Minute),
		}
		buckets, err := BuildDayBuckets(offsets, nil)
		require.NoError(t, err)
		require.Len(t, buckets, 5)

		wantCounts := []int{2, 0, 0, 0, 2}
		for i, b := range buckets {
			assert.Equal(t, day(1+i), b.Start)
			assert.Equal(t, wantCounts[i], b.Count)
			if i < len(buckets)-1 {
				assert.Equal(t, buckets[i+1].Start, b.End)
			}
		}
		assert.True(t, buckets[4].IsOpen())
	})

	t.Run("unsorted input gives the same buckets", func(t *testing.T) {
		a, err := BuildDayBuckets([]time.Time{day(1), day(3), day(2)}, nil)
		require.NoError(t, err)
		b, err := BuildDayBuckets([]time.Time{day(3), day(2), day(1)}, nil)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("daylight saving change keeps one bucket per day", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		// US clocks moved forward on 2024-03-10.
		offsets := []time.Time{
			time.Date(2024, 3, 9, 12, 0, 0, 0, ny),
			time.Date(2024, 3, 11, 12, 0, 0, 0, ny),
		}
		buckets, err := BuildDayBuckets(offsets, ny)
		require.NoError(t, err)
		require.Len(t, buckets, 3)
		for i, b := range buckets {
			assert.Equal(t, 9+i, b.Start.Day())
			assert.Equal(t, 0, b.Start.Hour())
		}
		assert.Equal(t, 23*time.Hour, buckets[1].End.Sub(buckets[1].Start))
	})

	t.Run("skipped calendar date gets no bucket", func(t *testing.T) {
		apia, err := time.LoadLocation("Pacific/Apia")
		require.NoError(t, err)
		// Samoa jumped from 2011-12-29 straight to 2011-12-31.
		offsets := []time.Time{
			time.Date(2011, 12, 28, 12, 0, 0, 0, apia),
			time.Date(2012, 1, 2, 12, 0, 0, 0, apia),
		}
		buckets, err := BuildDayBuckets(offsets, apia)
		require.NoError(t, err)

		var days []int
		for _, b := range buckets {
			days = append(days, b.Start.Day())
		}
		assert.Equal(t, []int{28, 29, 31, 1, 2}, days)
		assert.Equal(t, 24*time.Hour, buckets[1].End.Sub(buckets[1].Start))
		assert.Equal(t, 1, buckets[0].Count)
		assert.Equal(t, 1, buckets[4].Count)

		entries := ReduceBuckets(buckets, nil)
		seen := make(map[time.Time]bool)
		for _, e := range entries {
			assert.False(t, seen[e.Boundary], "duplicate boundary %v", e.Boundary)
			seen[e.Boundary] = true
		}
	})
}

func TestMaxLevelForPeriod(t *testing.T) {
	bursts := []schema.Burst{
		{Level: 1, Start: day(1), End: day(5)},
		{Level: 3, Start: day(2), End: day(3)},
		{Level: 2, Start: day(8), End: day(9)},
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"max wins over enclosing burst", day(2), day(3), 3},
		{"only outer burst", day(4), day(5), 1},
		{"no overlap", day(6), day(7), 0},
		{"end equals period start", day(5), day(6), 1},
		{"start equals period end", day(7), day(8), 2},
		{"just before start", day(7), day(8, -time.Nanosecond), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxLevelForPeriod(bursts, tt.start, tt.end))
		})
	}

	assert.Equal(t, 0, MaxLevelForPeriod(nil, day(1), day(2)))
}

func TestReduce(t *testing.T) {
	t.Run("empty offsets", func(t *testing.T) {
		_, err := Reduce(nil, nil, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("coverage and first entry baseline", func(t *testing.T) {
		bursts := []schema.Burst{{Level: 4, Start: day(1), End: day(10)}}
		entries, err := Reduce(dailyOffsets(1, 6), bursts, nil)
		require.NoError(t, err)
		require.Len(t, entries, 6)
		assert.Equal(t, []int{0, 4, 4, 4, 4, 4}, levels(entries))
		assert.True(t, entries[0].PeriodStart.IsZero())
		for i := 1; i < len(entries); i++ {
			assert.True(t, entries[i].Boundary.After(entries[i-1].Boundary))
			assert.Equal(t, entries[i-1].Boundary, entries[i].PeriodStart)
		}
	})

	t.Run("day-long burst credits both touching periods", func(t *testing.T) {
		bursts := []schema.Burst{{Level: 2, Start: day(3), End: day(3, 23*time.Hour+59*time.Minute)}}
		entries, err := Reduce(dailyOffsets(1, 6), bursts, nil)
		require.NoError(t, err)
		// Day 3 is labelled by the period [day 2, day 3], which touches the burst start.
		assert.Equal(t, []int{0, 0, 2, 2, 0, 0}, levels(entries))
		assert.Equal(t, day(4), entries[3].Boundary)
	})

	t.Run("burst ending at midnight counts for that day", func(t *testing.T) {
		bursts := []schema.Burst{{Level: 1, Start: day(2, 12*time.Hour), End: day(5)}}
		entries, err := Reduce(dailyOffsets(1, 7), bursts, nil)
		require.NoError(t, err)
		// The period [day 5, day 6] is labelled day 6.
		assert.Equal(t, day(6), entries[5].Boundary)
		assert.Equal(t, 1, entries[5].Level)
		assert.Equal(t, 0, entries[6].Level)
	})

	t.Run("nested bursts", func(t *testing.T) {
		bursts := []schema.Burst{
			{Level: 1, Start: day(1), End: day(5)},
			{Level: 3, Start: day(2), End: day(3)},
		}
		entries, err := Reduce(dailyOffsets(1, 7), bursts, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 3, 3, 3, 1, 1, 0}, levels(entries))
	})

	t.Run("deterministic", func(t *testing.T) {
		bursts := []schema.Burst{
			{Level: 2, Start: day(3), End: day(4)},
			{Level: 1, Start: day(1), End: day(6)},
		}
		first, err := Reduce(dailyOffsets(1, 8), bursts, nil)
		require.NoError(t, err)
		second, err := Reduce(dailyOffsets(1, 8), bursts, nil)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestRestrictToMinLevel(t *testing.T) {
	perDay := func(lvls ...int) []schema.Burst {
		var out []schema.Burst
		for i, l := range lvls {
			out = append(out, schema.Burst{Level: l, Start: day(1 + i), End: day(1+i, 20*time.Hour)})
		}
		return out
	}

	t.Run("threshold must be positive", func(t *testing.T) {
		_, err := RestrictToMinLevel(perDay(1, 2), 0, nil)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("single qualifying burst", func(t *testing.T) {
		_, err := RestrictToMinLevel(perDay(0, 1, 3, 1, 0), 3, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientData)

		var insufficient *InsufficientDataError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 3, insufficient.LowestLevel)
		assert.Equal(t, 1, insufficient.Qualifying)
		assert.Contains(t, err.Error(), "Try reducing the lowest level")
	})

	t.Run("no qualifying bursts", func(t *testing.T) {
		_, err := RestrictToMinLevel(perDay(0, 1), 5, nil)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("qualifying bursts share a start", func(t *testing.T) {
		bursts := []schema.Burst{
			{Level: 3, Start: day(4), End: day(5)},
			{Level: 4, Start: day(4), End: day(4, time.Hour)},
		}
		_, err := RestrictToMinLevel(bursts, 3, nil)
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("two separated bursts", func(t *testing.T) {
		r, err := RestrictToMinLevel(perDay(0, 3, 1, 0, 3, 1), 3, nil)
		require.NoError(t, err)
		assert.Equal(t, day(4), r.Start)
		assert.Equal(t, day(7), r.End)
	})

	t.Run("shifted starts are floored", func(t *testing.T) {
		bursts := []schema.Burst{
			{Level: 2, Start: day(10, 18*time.Hour), End: day(11)},
			{Level: 2, Start: day(3, 6*time.Hour), End: day(4)},
			{Level: 1, Start: day(1), End: day(20)},
		}
		r, err := RestrictToMinLevel(bursts, 2, nil)
		require.NoError(t, err)
		assert.Equal(t, day(5), r.Start)
		assert.Equal(t, day(12), r.End)
	})
}

func TestClip(t *testing.T) {
	entries, err := Reduce(dailyOffsets(1, 10), []schema.Burst{{Level: 1, Start: day(4), End: day(5)}}, nil)
	require.NoError(t, err)
	buckets, err := BuildDayBuckets(dailyOffsets(1, 10), nil)
	require.NoError(t, err)

	r := schema.DateRange{Start: day(3), End: day(6)}

	clipped := ClipTimeline(entries, r)
	require.Len(t, clipped, 4)
	assert.Equal(t, day(3), clipped[0].Boundary)
	assert.Equal(t, day(6), clipped[3].Boundary)

	counts := ClipDailyCounts(DailyOffsetCounts(buckets), r)
	require.Len(t, counts, 4)
	for _, c := range counts {
		assert.Equal(t, 1, c.Count)
	}

	assert.Empty(t, ClipTimeline(entries, schema.DateRange{Start: day(20), End: day(21)}))
}

func TestMaxTimelineLevel(t *testing.T) {
	assert.Equal(t, 0, MaxTimelineLevel(nil))
	assert.Equal(t, 3, MaxTimelineLevel([]schema.TimelineEntry{{Level: 1}, {Level: 3}, {Level: 2}}))
}
