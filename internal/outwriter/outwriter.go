// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteTimeline prints a reduced timeline using the configured output format.
func (ow *OutWriter) WriteTimeline(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	return PrintTimelineResults(result, cfg, duration)
}

// WriteRange prints a derived display window using the configured output format.
func (ow *OutWriter) WriteRange(result schema.RangeResult, cfg *contract.Config) error {
	return PrintRangeResult(result, cfg)
}
