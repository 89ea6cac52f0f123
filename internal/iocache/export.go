package iocache

import (
	"errors"
	"fmt"

	"github.com/huangsam/burstline/internal/parquet"
)

// ExecuteRunExport exports the run history to two Parquet files derived from outputFile.
func ExecuteRunExport(outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run tracking is not configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total runs: %d\n", status.TotalRuns)
	fmt.Printf("Total day records: %d\n", status.TableSizes[runDaysTable])

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	days, err := store.GetAllRunDays()
	if err != nil {
		return fmt.Errorf("failed to retrieve run days: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	fmt.Printf("Exported %d runs to: %s\n", len(runs), runsFile)

	daysFile := outputFile + ".run_days.parquet"
	if err := parquet.WriteRunDaysParquet(parquet.ConvertRunDayRecords(days), daysFile); err != nil {
		return fmt.Errorf("failed to write run days: %w", err)
	}
	fmt.Printf("Exported %d day records to: %s\n", len(days), daysFile)
	return nil
}
