package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/parquet"
	"github.com/huangsam/burstline/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// timelineHeader is shared by CSV and XLSX output.
var timelineHeader = []string{"day", "period_start", "offsets", "level", "label"}

// PrintTimelineResults outputs a timeline, dispatching based on the output format configured.
func PrintTimelineResults(result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON timeline"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForTimeline(w, result)
		}, "Wrote CSV timeline"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetResultsForTimeline(result, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	case schema.XLSXOut:
		if err := writeXLSXResultsForTimeline(result, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
	default:
		// Default to human-readable table
		if err := printTimelineTable(os.Stdout, result, cfg, duration); err != nil {
			return fmt.Errorf("error writing timeline table output: %w", err)
		}
	}
	return nil
}

// writeCSVResultsForTimeline writes one row per day.
func writeCSVResultsForTimeline(w io.Writer, result schema.TimelineResult) error {
	return writeCSVWithHeader(w, timelineHeader, func(cw *csv.Writer) error {
		for _, r := range joinDays(result) {
			row := []string{
				formatDay(r.Day),
				formatPeriodStart(r.PeriodStart),
				strconv.Itoa(r.Offsets),
				strconv.Itoa(r.Level),
				contract.GetPlainLabel(r.Level, result.MaxLevel),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeParquetResultsForTimeline writes the level panel to outputFile and the
// daily counts panel next to it.
func writeParquetResultsForTimeline(result schema.TimelineResult, outputFile string) error {
	if err := parquet.WriteTimelineParquet(parquet.ConvertTimeline(result), outputFile); err != nil {
		return err
	}
	dailyFile := dailyParquetPath(outputFile)
	if err := parquet.WriteDailyParquet(parquet.ConvertDailyCounts(result), dailyFile); err != nil {
		return err
	}
	reportSaved("Wrote Parquet timeline", outputFile)
	reportSaved("Wrote Parquet daily counts", dailyFile)
	return nil
}

// dailyParquetPath derives the daily counts file from the timeline file.
func dailyParquetPath(outputFile string) string {
	return strings.TrimSuffix(outputFile, ".parquet") + ".daily.parquet"
}

// printTimelineTable prints the subject, one row per day and a summary footer.
func printTimelineTable(w io.Writer, result schema.TimelineResult, cfg *contract.Config, duration time.Duration) error {
	title := "Subject: " + contract.TruncateLabel(result.Subject, GetMaxSubjectWidth(cfg))
	if result.Subject == "" {
		title = "Subject: (unnamed)"
	}
	if cfg.UseEmojis {
		title = "📈 " + title
	}
	_, _ = fmt.Fprintln(w, title)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Day", "Offsets", "Level", "Label", "Bar"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	barWidth := GetMaxBarWidth(cfg)
	var data [][]string
	for _, r := range joinDays(result) {
		label := contract.GetPlainLabel(r.Level, result.MaxLevel)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Level, result.MaxLevel)
		}
		data = append(data, []string{
			formatDay(r.Day),
			strconv.Itoa(r.Offsets),
			strconv.Itoa(r.Level),
			label,
			contract.TruncateLabel(contract.LevelBar(r.Level), barWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	detector := schema.DetectorParams{}
	if result.Detector != nil {
		detector = *result.Detector
	}
	_, _ = fmt.Fprintf(w, "%s: max %d over %d days (unit %s, timezone %s)\n",
		detector.Label(), result.MaxLevel, len(result.Timeline), result.Unit, result.Location)
	if result.Range != nil {
		_, _ = fmt.Fprintf(w, "Window: %s to %s\n", formatDay(result.Range.Start), formatDay(result.Range.End))
	}
	_, _ = fmt.Fprintf(w, "Timeline reduced in %v. Cache backend: %s\n", duration, cfg.CacheBackend)
	return nil
}
