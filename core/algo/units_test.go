package algo

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/burstline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeUnit(t *testing.T) {
	for _, s := range []string{"D", "d", "h", "m", "s", "ms", "us", "ns", " s "} {
		_, err := ParseTimeUnit(s)
		assert.NoError(t, err, s)
	}
	for _, s := range []string{"", "M", "sec", "minutes"} {
		_, err := ParseTimeUnit(s)
		assert.ErrorIs(t, err, ErrUnknownUnit, s)
	}
}

func TestIntToTime(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	secs := want.Unix()

	tests := []struct {
		unit  schema.TimeUnit
		value int64
	}{
		{schema.UnitDay, secs / 86400},
		{schema.UnitHour, secs / 3600},
		{schema.UnitMinute, secs / 60},
		{schema.UnitSecond, secs},
		{schema.UnitMillisecond, secs * 1e3},
		{schema.UnitMicrosecond, secs * 1e6},
		{schema.UnitNanosecond, secs * 1e9},
	}
	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			got, err := IntToTime(tt.value, tt.unit)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %v", got)
		})
	}

	_, err := IntToTime(1, "fortnight")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	overflow := []struct {
		unit  schema.TimeUnit
		value int64
	}{
		{schema.UnitDay, 1 << 60},
		{schema.UnitHour, -(1 << 60)},
		{schema.UnitMinute, math.MaxInt64 / 30},
		{schema.UnitSecond, math.MaxInt64},
	}
	for _, tt := range overflow {
		t.Run("overflow "+string(tt.unit), func(t *testing.T) {
			_, err := IntToTime(tt.value, tt.unit)
			assert.ErrorIs(t, err, ErrInvalidTimestamp)
		})
	}

	got, err := IntToTime(math.MaxInt64, schema.UnitNanosecond)
	require.NoError(t, err)
	assert.Equal(t, 2262, got.Year())
}

func TestFloatToTime(t *testing.T) {
	got, err := FloatToTime(1.5, schema.UnitSecond)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1, 500_000_000).UTC(), got)

	got, err = FloatToTime(0.5, schema.UnitDay)
	require.NoError(t, err)
	assert.Equal(t, time.Unix(43200, 0).UTC(), got)

	_, err = FloatToTime(1, "x")
	assert.ErrorIs(t, err, ErrUnknownUnit)

	for _, v := range []float64{1e30, -1e30, math.NaN(), math.Inf(1)} {
		_, err = FloatToTime(v, schema.UnitSecond)
		assert.ErrorIs(t, err, ErrInvalidTimestamp, "%g", v)
	}
	_, err = FloatToTime(1e15, schema.UnitDay)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = ParseTimestamp("99999999999999999999999", schema.UnitSecond)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("1709251200", schema.UnitSecond)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("1709251200000", schema.UnitMillisecond)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseTimestamp("2024-03-01T06:00:00Z", schema.UnitSecond)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Hour())

	_, err = ParseTimestamp("", schema.UnitSecond)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
	_, err = ParseTimestamp("yesterday", schema.UnitSecond)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}
