// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/burstline/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	// Prune deletes entries stored before cutoff (unix seconds) or written
	// with a format version other than version, and reports how many went.
	Prune(cutoff int64, version int) (int64, error)
	Close() error
}

// RunStore defines the interface for tracking reduction runs and their daily output.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, subject string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalDays, maxLevel int) error

	// RecordDays stores the daily counts and levels produced by a run
	RecordDays(runID int64, counts []schema.DailyCount, timeline []schema.TimelineEntry) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllRunDays returns every recorded day ordered by run and day
	GetAllRunDays() ([]schema.RunDayRecord, error)

	// Close closes the underlying connection
	Close() error
}
