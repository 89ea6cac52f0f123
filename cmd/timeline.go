package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/burstline/core"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// timelineCmd reduces an input document into a daily timeline.
var timelineCmd = &cobra.Command{
	Use:   "timeline <input-file>",
	Short: "Show the highest burst level active on each day.",
	Long: `Reduce detected bursts and raw event offsets into a per-day timeline.

Offsets are bucketed into calendar days in the chosen timezone. Each day is
labelled with the highest level of any burst that overlaps the period from the
previous day to it; the first day is always level 0.

Input documents are JSON, YAML or CSV:
  {"svo": ["storm", "hits", "coast"],
   "bursts": [[level, start, end], ...],
   "offsets": [t, ...]}

Examples:
  # Reduce a detector run recorded in epoch seconds
  burstline timeline bursts.json

  # Millisecond timestamps, days in New York time
  burstline timeline bursts.json --unit ms --timezone America/New_York

  # Only the window spanned by bursts of level 2 or higher
  burstline timeline bursts.json --lowest-level 2

  # Export both panels for plotting
  burstline timeline bursts.json --output parquet --output-file storm.parquet

  # Keep the table up to date while the detector rewrites its output
  burstline timeline bursts.json --watch`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		execute := core.ExecuteTimeline
		if cfg.Watch {
			execute = core.WatchTimeline
		}
		if err := execute(ctx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run timeline", err)
		}
	},
}
