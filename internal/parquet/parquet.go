// Package parquet exports timelines and run history to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/burstline/schema"
	"github.com/parquet-go/parquet-go"
)

// Run maps to the burstline_runs table.
type Run struct {
	RunID int64 `parquet:"run_id,snappy"`

	StartTime time.Time  `parquet:"start_time,snappy"`
	EndTime   *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is unset for runs that never finished
	DurationMs *int64 `parquet:"run_duration_ms,optional,snappy"`

	Subject   string `parquet:"subject,snappy"`
	TotalDays int32  `parquet:"total_days,snappy"`
	MaxLevel  int32  `parquet:"max_level,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// RunDay maps to the burstline_run_days table.
type RunDay struct {
	RunID       int64     `parquet:"run_id,snappy"`
	Day         time.Time `parquet:"day,snappy"`
	OffsetCount int32     `parquet:"offset_count,snappy"`
	Level       int32     `parquet:"level,snappy"`
}

// TimelineRow is one entry of a reduced timeline.
type TimelineRow struct {
	Subject     string    `parquet:"subject,snappy,dict"`
	Boundary    time.Time `parquet:"boundary,snappy"`
	PeriodStart time.Time `parquet:"period_start,snappy"`
	Level       int32     `parquet:"level,snappy"`
}

// DailyRow is the offset count of one calendar day.
type DailyRow struct {
	Subject string    `parquet:"subject,snappy,dict"`
	Day     time.Time `parquet:"day,snappy"`
	Count   int32     `parquet:"count,snappy"`
}

// writeRows writes rows to outputPath with a schema inferred from T's struct tags.
func writeRows[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the row group and the footer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteRunsParquet writes run records to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteRunDaysParquet writes per-day run records to a Parquet file.
func WriteRunDaysParquet(data []RunDay, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteTimelineParquet writes timeline rows to a Parquet file.
func WriteTimelineParquet(data []TimelineRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteDailyParquet writes daily count rows to a Parquet file.
func WriteDailyParquet(data []DailyRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:        record.RunID,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			DurationMs:   record.DurationMs,
			Subject:      record.Subject,
			TotalDays:    record.TotalDays,
			MaxLevel:     record.MaxLevel,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertRunDayRecords converts schema.RunDayRecord to RunDay for Parquet export.
func ConvertRunDayRecords(records []schema.RunDayRecord) []RunDay {
	result := make([]RunDay, len(records))
	for i, record := range records {
		result[i] = RunDay{
			RunID:       record.RunID,
			Day:         record.Day,
			OffsetCount: record.OffsetCount,
			Level:       record.Level,
		}
	}
	return result
}

// ConvertTimeline flattens a result's timeline into rows.
func ConvertTimeline(result schema.TimelineResult) []TimelineRow {
	rows := make([]TimelineRow, len(result.Timeline))
	for i, e := range result.Timeline {
		rows[i] = TimelineRow{
			Subject:     result.Subject,
			Boundary:    e.Boundary,
			PeriodStart: e.PeriodStart,
			Level:       int32(e.Level),
		}
	}
	return rows
}

// ConvertDailyCounts flattens a result's daily counts into rows.
func ConvertDailyCounts(result schema.TimelineResult) []DailyRow {
	rows := make([]DailyRow, len(result.DailyCounts))
	for i, c := range result.DailyCounts {
		rows[i] = DailyRow{
			Subject: result.Subject,
			Day:     c.Day,
			Count:   int32(c.Count),
		}
	}
	return rows
}
