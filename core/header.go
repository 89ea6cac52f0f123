package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/burstline/internal/contract"
)

// logTimelineHeader prints a concise, 2-line header for each reduction.
// It goes to stderr so piped CSV or JSON output stays clean.
func logTimelineHeader(cfg *contract.Config, source string) {
	name := filepath.Base(source)
	if name == "" || name == "." {
		name = inlineName
	}

	// Line 1: The input and how its numbers are read
	fmt.Fprintf(os.Stderr, "🔎 Input: %s (Unit: %s, Timezone: %s)\n", name, cfg.Unit, locationOf(cfg))

	// Line 2: The window being shown
	switch {
	case cfg.LowestLevel > 0:
		fmt.Fprintf(os.Stderr, "📅 Window: bursts at level %d or higher\n", cfg.LowestLevel)
	case cfg.Range != nil:
		fmt.Fprintf(os.Stderr, "📅 Window: %s → %s\n",
			cfg.Range.Start.Format(contract.DateFormat), cfg.Range.End.Format(contract.DateFormat))
	default:
		fmt.Fprintln(os.Stderr, "📅 Window: full observation window")
	}
}
