package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		reportSaved(successMsg, outputFile)
	}
	return nil
}

// reportSaved tells the user where a file landed.
func reportSaved(successMsg, outputFile string) {
	fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := sonic.ConfigStd.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// dayRow joins the two panels of a timeline on their shared day.
type dayRow struct {
	Day         time.Time
	PeriodStart time.Time
	Offsets     int
	Level       int
}

// joinDays merges daily counts and timeline entries into one row per day,
// ordered by day. Both series come from the same buckets, so they normally
// line up one to one; a day present in only one series keeps zero for the other.
func joinDays(result schema.TimelineResult) []dayRow {
	rows := make([]dayRow, 0, max(len(result.DailyCounts), len(result.Timeline)))
	index := make(map[int64]int, cap(rows))

	for _, c := range result.DailyCounts {
		index[c.Day.Unix()] = len(rows)
		rows = append(rows, dayRow{Day: c.Day, Offsets: c.Count})
	}
	for _, e := range result.Timeline {
		if i, ok := index[e.Boundary.Unix()]; ok {
			rows[i].Level = e.Level
			rows[i].PeriodStart = e.PeriodStart
			continue
		}
		index[e.Boundary.Unix()] = len(rows)
		rows = append(rows, dayRow{Day: e.Boundary, PeriodStart: e.PeriodStart, Level: e.Level})
	}

	slices.SortStableFunc(rows, func(a, b dayRow) int { return a.Day.Compare(b.Day) })
	return rows
}

// formatDay renders a day in the result's location.
func formatDay(t time.Time) string {
	return t.Format(contract.DateFormat)
}

// formatPeriodStart renders an entry's period start, empty for the first entry.
func formatPeriodStart(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return formatDay(t)
}
