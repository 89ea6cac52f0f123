// Package algo holds the pure day-by-day burst reduction.
package algo

import (
	"time"

	"github.com/huangsam/burstline/schema"
)

// RangeShiftDays is how far the derived date range is pushed forward from the
// first and last qualifying burst starts.
const RangeShiftDays = 2

// civilDay identifies a calendar day independent of clock time and offset.
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func civilOf(t time.Time, loc *time.Location) civilDay {
	y, m, d := t.In(loc).Date()
	return civilDay{y, m, d}
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}

// FloorToDay truncates t to midnight of its calendar day in loc.
// A nil loc means UTC.
func FloorToDay(t time.Time, loc *time.Location) time.Time {
	loc = orUTC(loc)
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// BuildDayBuckets partitions the span of offsets into calendar days.
// Every day between the first and last offset gets a bucket, including days
// without offsets, and each bucket carries the number of offsets on that day.
func BuildDayBuckets(offsets []time.Time, loc *time.Location) ([]schema.DayBucket, error) {
	if len(offsets) == 0 {
		return nil, ErrEmptyInput
	}
	loc = orUTC(loc)

	lo, hi := offsets[0], offsets[0]
	for _, o := range offsets[1:] {
		if o.Before(lo) {
			lo = o
		}
		if o.After(hi) {
			hi = o
		}
	}

	first := FloorToDay(lo, loc)
	last := civilOf(hi, loc)
	y, m, d := first.Date()

	var buckets []schema.DayBucket
	index := make(map[civilDay]int)
	var prev civilDay
	for i := 0; ; i++ {
		// Rebuild from the civil date each step so midnight stays midnight
		// across DST changes.
		start := time.Date(y, m, d+i, 0, 0, 0, 0, loc)
		key := civilOf(start, loc)
		// A zone that skips a whole date normalizes it onto a neighbour.
		if len(buckets) > 0 && key == prev {
			continue
		}
		prev = key
		index[key] = len(buckets)
		buckets = append(buckets, schema.DayBucket{Start: start})
		if key == last {
			break
		}
	}

	for i := 0; i < len(buckets)-1; i++ {
		buckets[i].End = buckets[i+1].Start
	}

	for _, o := range offsets {
		buckets[index[civilOf(o, loc)]].Count++
	}

	return buckets, nil
}

// MaxLevelForPeriod returns the highest level among bursts that intersect the
// closed period [periodStart, periodEnd]. Touching endpoints count as overlap.
// It returns 0 when nothing intersects.
func MaxLevelForPeriod(bursts []schema.Burst, periodStart, periodEnd time.Time) int {
	level := 0
	for _, b := range bursts {
		if b.End.Before(periodStart) || periodEnd.Before(b.Start) {
			continue
		}
		if b.Level > level {
			level = b.Level
		}
	}
	return level
}

// Reduce builds the day buckets for offsets and labels each one with the
// highest burst level active in the period ending at it.
func Reduce(offsets []time.Time, bursts []schema.Burst, loc *time.Location) ([]schema.TimelineEntry, error) {
	buckets, err := BuildDayBuckets(offsets, loc)
	if err != nil {
		return nil, err
	}
	return ReduceBuckets(buckets, bursts), nil
}

// ReduceBuckets labels already built buckets. Entry i covers the period from
// bucket i-1 to bucket i and is labelled by bucket i. The first entry has no
// preceding period and is always level 0.
func ReduceBuckets(buckets []schema.DayBucket, bursts []schema.Burst) []schema.TimelineEntry {
	if len(buckets) == 0 {
		return nil
	}

	entries := make([]schema.TimelineEntry, len(buckets))
	entries[0] = schema.TimelineEntry{Boundary: buckets[0].Start}
	for i := 1; i < len(buckets); i++ {
		periodStart, periodEnd := buckets[i-1].Start, buckets[i].Start
		entries[i] = schema.TimelineEntry{
			Boundary:    periodEnd,
			PeriodStart: periodStart,
			Level:       MaxLevelForPeriod(bursts, periodStart, periodEnd),
		}
	}
	return entries
}

// DailyOffsetCounts projects bucket counts into a per-day series.
func DailyOffsetCounts(buckets []schema.DayBucket) []schema.DailyCount {
	counts := make([]schema.DailyCount, len(buckets))
	for i, b := range buckets {
		counts[i] = schema.DailyCount{Day: b.Start, Count: b.Count}
	}
	return counts
}

// MaxTimelineLevel returns the highest level in a timeline.
func MaxTimelineLevel(entries []schema.TimelineEntry) int {
	level := 0
	for _, e := range entries {
		level = max(level, e.Level)
	}
	return level
}

// RestrictToMinLevel derives the display window spanned by bursts at or above
// lowestLevel. Both ends are the earliest and latest qualifying starts pushed
// forward by RangeShiftDays and floored to the day.
func RestrictToMinLevel(bursts []schema.Burst, lowestLevel int, loc *time.Location) (schema.DateRange, error) {
	if lowestLevel <= 0 {
		return schema.DateRange{}, ErrInvalidThreshold
	}
	loc = orUTC(loc)

	var lo, hi time.Time
	qualifying := 0
	for _, b := range bursts {
		if b.Level < lowestLevel {
			continue
		}
		if qualifying == 0 || b.Start.Before(lo) {
			lo = b.Start
		}
		if qualifying == 0 || b.Start.After(hi) {
			hi = b.Start
		}
		qualifying++
	}

	if qualifying == 0 || lo.Equal(hi) {
		return schema.DateRange{}, &InsufficientDataError{LowestLevel: lowestLevel, Qualifying: qualifying}
	}

	return schema.DateRange{
		Start: FloorToDay(lo.In(loc).AddDate(0, 0, RangeShiftDays), loc),
		End:   FloorToDay(hi.In(loc).AddDate(0, 0, RangeShiftDays), loc),
	}, nil
}

// ClipTimeline keeps the entries whose boundary falls inside r.
func ClipTimeline(entries []schema.TimelineEntry, r schema.DateRange) []schema.TimelineEntry {
	var clipped []schema.TimelineEntry
	for _, e := range entries {
		if r.Contains(e.Boundary) {
			clipped = append(clipped, e)
		}
	}
	return clipped
}

// ClipDailyCounts keeps the counts whose day falls inside r.
func ClipDailyCounts(counts []schema.DailyCount, r schema.DateRange) []schema.DailyCount {
	var clipped []schema.DailyCount
	for _, c := range counts {
		if r.Contains(c.Day) {
			clipped = append(clipped, c)
		}
	}
	return clipped
}
