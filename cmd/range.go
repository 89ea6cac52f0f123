package cmd

import (
	"errors"

	"github.com/huangsam/burstline/core"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/spf13/cobra"
)

// rangeCmd prints the display window derived from --lowest-level.
var rangeCmd = &cobra.Command{
	Use:   "range <input-file>",
	Short: "Show the date range spanned by bursts at or above a level.",
	Long: `Derive the display window used by 'timeline --lowest-level'.

The window runs from the earliest to the latest start of the qualifying
bursts, both pushed forward by two days and floored to the calendar day.
At least two qualifying bursts with different starts are required.

Examples:
  burstline range bursts.json --lowest-level 2
  burstline range bursts.json --lowest-level 1 --output json`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := sharedSetup(rootCtx, cmd, args); err != nil {
			return err
		}
		if cfg.LowestLevel <= 0 {
			return errors.New("--lowest-level must be greater than 0")
		}
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRange(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot derive range", err)
		}
	},
}
