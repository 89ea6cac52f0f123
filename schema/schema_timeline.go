package schema

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidBurst is returned when a burst has a negative level or ends before it starts.
var ErrInvalidBurst = errors.New("invalid burst")

// Burst is a detected interval of elevated activity.
// Level 0 is the baseline; higher levels are more intense.
type Burst struct {
	Level int       `json:"level"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks the burst invariants.
func (b Burst) Validate() error {
	if b.Level < 0 {
		return fmt.Errorf("%w: level %d is negative", ErrInvalidBurst, b.Level)
	}
	if b.End.Before(b.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidBurst,
			b.End.Format(time.RFC3339), b.Start.Format(time.RFC3339))
	}
	return nil
}

// DayBucket is one calendar day of the observation window.
// End is the start of the next bucket, or the zero time for the last bucket.
type DayBucket struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int       `json:"count"`
}

// IsOpen reports whether the bucket is the trailing bucket without an end.
func (b DayBucket) IsOpen() bool {
	return b.End.IsZero()
}

// TimelineEntry is the highest burst level seen during one day period.
// Boundary is the start of the bucket the entry is labelled by. PeriodStart is
// the start of the previous bucket and is zero for the first entry.
type TimelineEntry struct {
	Boundary    time.Time `json:"boundary"`
	PeriodStart time.Time `json:"period_start"`
	Level       int       `json:"level"`
}

// DailyCount is the number of offsets that fell on a day.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// DateRange is an inclusive, day-aligned display window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both ends included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DetectorParams are the burst detector settings echoed to renderers.
type DetectorParams struct {
	S     float64 `json:"s,omitempty"`
	Gamma float64 `json:"gamma,omitempty"`
}

// Label returns the axis label a renderer would show for the level panel.
func (p DetectorParams) Label() string {
	if p.S == 0 && p.Gamma == 0 {
		return "Burst levels"
	}
	return fmt.Sprintf("Burst levels (s = %g, γ = %g)", p.S, p.Gamma)
}

// TimelineResult carries one reduction together with its inputs.
type TimelineResult struct {
	Subject     string          `json:"subject"`
	Unit        TimeUnit        `json:"unit"`
	Location    string          `json:"location"`
	LowestLevel int             `json:"lowest_level"`
	MaxLevel    int             `json:"max_level"`
	Range       *DateRange      `json:"range,omitempty"`
	Detector    *DetectorParams `json:"detector,omitempty"`
	Bursts      []Burst         `json:"bursts"`
	DailyCounts []DailyCount    `json:"daily_counts"`
	Timeline    []TimelineEntry `json:"timeline"`
}

// BurstDocument is a decoded input document for one subject.
type BurstDocument struct {
	SVO     []string    `json:"svo"`
	Bursts  []Burst     `json:"bursts"`
	Offsets []time.Time `json:"offsets"`
}

// RangeResult is the display window derived from a lowest level.
type RangeResult struct {
	Subject     string    `json:"subject"`
	LowestLevel int       `json:"lowest_level"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
}
