package outwriter

import (
	"os"

	"github.com/huangsam/burstline/internal/contract"
	"golang.org/x/term"
)

// GetMaxSubjectWidth calculates the maximum width for the subject title above
// the timeline table based on terminal width.
func GetMaxSubjectWidth(cfg *contract.Config) int {
	termWidth := cfg.Width

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Leave room for the "Subject: " prefix
	available := termWidth - 10
	if available < 15 {
		return 15
	}
	if available > 120 {
		return 120
	}
	return available
}

// GetMaxBarWidth returns how many cells the level bar column may use.
func GetMaxBarWidth(cfg *contract.Config) int {
	// Day + Offsets + Level + Label columns with borders
	available := GetMaxSubjectWidth(cfg) + 10 - 55
	if available < 5 {
		return 5
	}
	return available
}
