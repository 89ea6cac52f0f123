package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/burstline/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file written with type T.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"run", new(Run), []string{"run_id", "start_time", "end_time", "run_duration_ms", "subject", "total_days", "max_level", "config_params"}},
		{"run day", new(RunDay), []string{"run_id", "day", "offset_count", "level"}},
		{"timeline", new(TimelineRow), []string{"subject", "boundary", "period_start", "level"}},
		{"daily", new(DailyRow), []string{"subject", "day", "count"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteRunsParquet_Nullable(t *testing.T) {
	now := time.Now()
	end := now.Add(time.Second)
	duration := int64(1000)
	params := `{"unit":"s"}`

	data := []Run{
		{RunID: 1, StartTime: now, EndTime: &end, DurationMs: &duration, Subject: "storm | hits | coast", TotalDays: 7, MaxLevel: 3, ConfigParams: &params},
		{RunID: 2, StartTime: now, Subject: "unfinished"},
	}

	path := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteRunsParquet(data, path))

	got := readAll[Run](t, path)
	require.Len(t, got, 2)

	assert.Equal(t, "storm | hits | coast", got[0].Subject)
	assert.Equal(t, int32(3), got[0].MaxLevel)
	require.NotNil(t, got[0].EndTime)
	assert.WithinDuration(t, end, *got[0].EndTime, time.Nanosecond)
	require.NotNil(t, got[0].DurationMs)
	assert.Equal(t, duration, *got[0].DurationMs)
	require.NotNil(t, got[0].ConfigParams)
	assert.Equal(t, params, *got[0].ConfigParams)

	assert.Nil(t, got[1].EndTime)
	assert.Nil(t, got[1].DurationMs)
	assert.Nil(t, got[1].ConfigParams)
}

func TestWriteTimelineAndDaily(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC) }
	result := schema.TimelineResult{
		Subject: "storm",
		Timeline: []schema.TimelineEntry{
			{Boundary: d(1), Level: 0},
			{Boundary: d(2), PeriodStart: d(1), Level: 2},
		},
		DailyCounts: []schema.DailyCount{{Day: d(1), Count: 4}, {Day: d(2), Count: 1}},
	}

	dir := t.TempDir()
	timelinePath := filepath.Join(dir, "timeline.parquet")
	dailyPath := filepath.Join(dir, "daily.parquet")
	require.NoError(t, WriteTimelineParquet(ConvertTimeline(result), timelinePath))
	require.NoError(t, WriteDailyParquet(ConvertDailyCounts(result), dailyPath))

	timeline := readAll[TimelineRow](t, timelinePath)
	require.Len(t, timeline, 2)
	assert.Equal(t, "storm", timeline[1].Subject)
	assert.Equal(t, int32(2), timeline[1].Level)
	assert.True(t, d(1).Equal(timeline[1].PeriodStart))

	daily := readAll[DailyRow](t, dailyPath)
	require.Len(t, daily, 2)
	assert.Equal(t, int32(4), daily[0].Count)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunDaysParquet([]RunDay{}, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "file should contain the schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteRunsParquet([]Run{{RunID: 1}}, "/nonexistent/directory/output.parquet")
	assert.Error(t, err)
}

func TestConvertRecords(t *testing.T) {
	duration := int64(42)
	runs := ConvertRunRecords([]schema.RunRecord{{RunID: 9, Subject: "x", DurationMs: &duration, TotalDays: 3, MaxLevel: 1}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(9), runs[0].RunID)
	assert.Equal(t, &duration, runs[0].DurationMs)

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	days := ConvertRunDayRecords([]schema.RunDayRecord{{RunID: 9, Day: day, OffsetCount: 5, Level: 2}})
	require.Len(t, days, 1)
	assert.Equal(t, RunDay{RunID: 9, Day: day, OffsetCount: 5, Level: 2}, days[0])
}
