package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
)

// PrintRangeResult outputs the derived display window. Parquet and XLSX fall
// back to JSON since a single row does not warrant a columnar file.
func PrintRangeResult(result schema.RangeResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut, schema.ParquetOut, schema.XLSXOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON range")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"subject", "lowest_level", "start", "end"}, func(cw *csv.Writer) error {
				return cw.Write([]string{
					result.Subject,
					strconv.Itoa(result.LowestLevel),
					formatDay(result.Start),
					formatDay(result.End),
				})
			})
		}, "Wrote CSV range")
	default:
		return writeRangeText(os.Stdout, result, cfg)
	}
}

// writeRangeText prints a one-line summary of the window.
func writeRangeText(w io.Writer, result schema.RangeResult, cfg *contract.Config) error {
	prefix := ""
	if cfg.UseEmojis {
		prefix = "🗓️  "
	}
	subject := result.Subject
	if subject == "" {
		subject = "(unnamed)"
	}
	_, err := fmt.Fprintf(w, "%s%s: level >= %d from %s to %s\n", prefix,
		contract.TruncateLabel(subject, GetMaxSubjectWidth(cfg)), result.LowestLevel,
		formatDay(result.Start), formatDay(result.End))
	return err
}
