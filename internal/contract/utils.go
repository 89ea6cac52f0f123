package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/burstline/schema"
	"github.com/mattn/go-runewidth"
)

// Level label constants.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	ModerateValue = "Moderate" // Moderate value
	LowValue      = "Low"      // Low value
	BaselineValue = "Baseline" // Baseline value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // moderateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
	BaselineColor = color.New(color.Faint)
)

// GetPlainLabel returns a plain text label for a burst level relative to the
// highest level in the same timeline. Level 0 is always the baseline.
func GetPlainLabel(level, maxLevel int) string {
	if level <= 0 || maxLevel <= 0 {
		return BaselineValue
	}
	ratio := float64(level) / float64(maxLevel)
	switch {
	case ratio >= 0.8:
		return CriticalValue
	case ratio >= 0.6:
		return HighValue
	case ratio >= 0.4:
		return ModerateValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(level, maxLevel int) string {
	text := GetPlainLabel(level, maxLevel)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case ModerateValue:
		return ModerateColor.Sprint(text)
	case LowValue:
		return LowColor.Sprint(text)
	default:
		return BaselineColor.Sprint(text)
	}
}

// LevelBar renders a level as a run of block characters.
func LevelBar(level int) string {
	if level <= 0 {
		return "·"
	}
	return strings.Repeat("█", level)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".burstline_cache.db"
	}
	return filepath.Join(homeDir, ".burstline_cache.db")
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".burstline_runs.db"
	}
	return filepath.Join(homeDir, ".burstline_runs.db")
}

// TruncateLabel shortens a label to maxWidth terminal cells, keeping the head
// and appending an ellipsis. Wide runes count as two cells.
func TruncateLabel(label string, maxWidth int) string {
	if maxWidth <= 3 || runewidth.StringWidth(label) <= maxWidth {
		return label
	}
	return runewidth.Truncate(label, maxWidth, "...")
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SubjectFromSVO joins a subject tuple into a single display label.
func SubjectFromSVO(svo []string) string {
	parts := make([]string, 0, len(svo))
	for _, p := range svo {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, schema.SubjectSeparator)
}
