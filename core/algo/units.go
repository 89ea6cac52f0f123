package algo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/burstline/schema"
)

var unitSeconds = map[schema.TimeUnit]float64{
	schema.UnitDay:         86400,
	schema.UnitHour:        3600,
	schema.UnitMinute:      60,
	schema.UnitSecond:      1,
	schema.UnitMillisecond: 1e-3,
	schema.UnitMicrosecond: 1e-6,
	schema.UnitNanosecond:  1e-9,
}

// ParseTimeUnit validates a unit name. Matching is case-sensitive because
// "m" and "M" would otherwise be ambiguous, except that "d" is accepted for days.
func ParseTimeUnit(s string) (schema.TimeUnit, error) {
	s = strings.TrimSpace(s)
	if s == "d" {
		return schema.UnitDay, nil
	}
	unit := schema.TimeUnit(s)
	if _, ok := unitSeconds[unit]; !ok {
		return "", fmt.Errorf("%w %q: must be D, h, m, s, ms, us, ns", ErrUnknownUnit, s)
	}
	return unit, nil
}

// maxEpochSeconds bounds converted timestamps. Larger values overflow the
// int64 arithmetic behind time.Time.
const maxEpochSeconds = math.MaxInt64 / 2

// wholeUnitSeconds holds the units that are whole multiples of a second.
var wholeUnitSeconds = map[schema.TimeUnit]int64{
	schema.UnitDay:    86400,
	schema.UnitHour:   3600,
	schema.UnitMinute: 60,
	schema.UnitSecond: 1,
}

// IntToTime converts an integral epoch number in unit to a UTC time.
func IntToTime(v int64, unit schema.TimeUnit) (time.Time, error) {
	if scale, ok := wholeUnitSeconds[unit]; ok {
		if v > maxEpochSeconds/scale || v < -maxEpochSeconds/scale {
			return time.Time{}, fmt.Errorf("%w: %d%s is out of range", ErrInvalidTimestamp, v, unit)
		}
		return time.Unix(v*scale, 0).UTC(), nil
	}
	switch unit {
	case schema.UnitMillisecond:
		return time.UnixMilli(v).UTC(), nil
	case schema.UnitMicrosecond:
		return time.UnixMicro(v).UTC(), nil
	case schema.UnitNanosecond:
		return time.Unix(0, v).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w %q", ErrUnknownUnit, unit)
}

// FloatToTime converts a fractional epoch number in unit to a UTC time.
func FloatToTime(v float64, unit schema.TimeUnit) (time.Time, error) {
	scale, ok := unitSeconds[unit]
	if !ok {
		return time.Time{}, fmt.Errorf("%w %q", ErrUnknownUnit, unit)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, v)
	}
	secs := v * scale
	if secs > maxEpochSeconds || secs < -maxEpochSeconds {
		return time.Time{}, fmt.Errorf("%w: %g%s is out of range", ErrInvalidTimestamp, v, unit)
	}
	whole := math.Floor(secs)
	nanos := math.Round((secs - whole) * 1e9)
	return time.Unix(int64(whole), int64(nanos)).UTC(), nil
}

// ParseTimestamp reads a timestamp written either as an epoch number in unit
// or as an RFC3339 string.
func ParseTimestamp(s string, unit schema.TimeUnit) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return IntToTime(i, unit)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return FloatToTime(f, unit)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
