package algo

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the reducer.
var (
	ErrEmptyInput        = errors.New("no offsets to bucket")
	ErrInsufficientData  = errors.New("insufficient bursts for range")
	ErrInvalidThreshold  = errors.New("lowest level must be greater than 0")
	ErrUnknownUnit       = errors.New("unknown time unit")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrInvertedDateRange = errors.New("date range ends before it starts")
)

// InsufficientDataError reports that too few bursts reach the requested level
// to derive a date range.
type InsufficientDataError struct {
	LowestLevel int
	Qualifying  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("there must be at least two bursts at or above level %d (found %d with distinct starts). Try reducing the lowest level",
		e.LowestLevel, e.Qualifying)
}

// Unwrap lets callers match with errors.Is(err, ErrInsufficientData).
func (e *InsufficientDataError) Unwrap() error {
	return ErrInsufficientData
}
