package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBurstValidate(t *testing.T) {
	tests := []struct {
		name    string
		burst   Burst
		wantErr bool
	}{
		{"baseline", Burst{Level: 0, Start: day(1), End: day(2)}, false},
		{"instant", Burst{Level: 3, Start: day(1), End: day(1)}, false},
		{"negative level", Burst{Level: -1, Start: day(1), End: day(2)}, true},
		{"end before start", Burst{Level: 1, Start: day(2), End: day(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.burst.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBurst)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r := DateRange{Start: day(3), End: day(5)}
	assert.False(t, r.Contains(day(2)))
	assert.True(t, r.Contains(day(3)))
	assert.True(t, r.Contains(day(4)))
	assert.True(t, r.Contains(day(5)))
	assert.False(t, r.Contains(day(5).Add(time.Nanosecond)))
}

func TestDetectorParamsLabel(t *testing.T) {
	assert.Equal(t, "Burst levels", DetectorParams{}.Label())
	assert.Equal(t, "Burst levels (s = 2, γ = 0.5)", DetectorParams{S: 2, Gamma: 0.5}.Label())
}

func TestDayBucketIsOpen(t *testing.T) {
	assert.True(t, DayBucket{Start: day(1)}.IsOpen())
	assert.False(t, DayBucket{Start: day(1), End: day(2)}.IsOpen())
}
