package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`

	// Subjects and CachedDays summarize the timelines that are still usable.
	Subjects     int `json:"subjects"`
	CachedDays   int `json:"cached_days"`
	StaleEntries int `json:"stale_entries"`
}

// CacheFormatVersion is the encoding version of stored timeline results.
const CacheFormatVersion = 1

// CacheMaxAge is how long a stored timeline stays usable.
const CacheMaxAge = 7 * 24 * time.Hour

// RunStatus represents the status of the run history store.
type RunStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalDays     int              `json:"total_days"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the burstline_runs table.
type RunRecord struct {
	RunID        int64
	StartTime    time.Time
	EndTime      *time.Time
	DurationMs   *int64
	Subject      string
	TotalDays    int32
	MaxLevel     int32
	ConfigParams *string
}

// RunDayRecord represents a row from the burstline_run_days table.
type RunDayRecord struct {
	RunID       int64
	Day         time.Time
	OffsetCount int32
	Level       int32
}
