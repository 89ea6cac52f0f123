package outwriter

import (
	"fmt"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook.
const (
	summarySheet = "Summary"
	daysSheet    = "Days"
)

// buildTimelineWorkbook lays out a summary sheet and one row per day.
func buildTimelineWorkbook(result schema.TimelineResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(daysSheet); err != nil {
		return nil, err
	}

	summary := [][2]any{
		{"Subject", result.Subject},
		{"Unit", string(result.Unit)},
		{"Timezone", result.Location},
		{"Lowest level", result.LowestLevel},
		{"Max level", result.MaxLevel},
		{"Days", len(result.Timeline)},
	}
	if result.Range != nil {
		summary = append(summary,
			[2]any{"Window start", formatDay(result.Range.Start)},
			[2]any{"Window end", formatDay(result.Range.End)})
	}
	if result.Detector != nil {
		summary = append(summary, [2]any{"Detector", result.Detector.Label()})
	}
	for i, kv := range summary {
		row := i + 1
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(daysSheet, "A1", &timelineHeader); err != nil {
		return nil, err
	}
	for i, r := range joinDays(result) {
		values := []any{
			formatDay(r.Day),
			formatPeriodStart(r.PeriodStart),
			r.Offsets,
			r.Level,
			contract.GetPlainLabel(r.Level, result.MaxLevel),
		}
		if err := f.SetSheetRow(daysSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// writeXLSXResultsForTimeline saves the workbook to outputFile.
func writeXLSXResultsForTimeline(result schema.TimelineResult, outputFile string) error {
	f, err := buildTimelineWorkbook(result)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(outputFile); err != nil {
		return err
	}
	reportSaved("Wrote XLSX timeline", outputFile)
	return nil
}
