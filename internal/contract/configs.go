package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/burstline/core/algo"
	"github.com/huangsam/burstline/schema"
)

// Default values for configuration.
const (
	DefaultTimezone = "UTC"
	DefaultDebounce = 250 * time.Millisecond
	DateFormat      = "2006-01-02"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a reduction.
// This struct is the "final, validated" config.
type Config struct {
	InputPath   string
	InputFormat schema.InputFormat // empty means detect from extension
	Subject     string             // overrides the document subject when set

	// LowestLevel of 0 disables range restriction. Range is the caller
	// supplied display window.
	Unit        schema.TimeUnit
	Location    *time.Location
	LowestLevel int
	Range       *schema.DateRange
	Detector    *schema.DetectorParams

	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	MetricsFile string

	Watch    bool
	Debounce time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunBackend   schema.DatabaseBackend
	RunDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in status lines
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunBackend     string `mapstructure:"run-backend"`
	RunDBConnect   string `mapstructure:"run-db-connect"`
	Emoji          string `mapstructure:"emoji"`
	Color          string `mapstructure:"color"`
	MetricsFile    string `mapstructure:"metrics-file"`

	// --- Fields shared by timeline and range ---
	Unit        string `mapstructure:"unit"`
	Timezone    string `mapstructure:"timezone"`
	LowestLevel int    `mapstructure:"lowest-level"`
	InputFormat string `mapstructure:"input-format"`
	Subject     string `mapstructure:"subject"`

	// --- Fields from timelineCmd.Flags() ---
	From          string  `mapstructure:"from"`
	To            string  `mapstructure:"to"`
	Watch         bool    `mapstructure:"watch"`
	Debounce      string  `mapstructure:"debounce"`
	DetectorS     float64 `mapstructure:"detector-s"`
	DetectorGamma float64 `mapstructure:"detector-gamma"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Range != nil {
		r := *c.Range
		clone.Range = &r
	}
	if c.Detector != nil {
		d := *c.Detector
		clone.Detector = &d
	}
	return &clone
}

// ProcessAndValidate validates the raw input and populates cfg.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processTimeSettings(cfg, input); err != nil {
		return err
	}
	if err := processDisplayRange(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return resolveInputPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and run history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	cfg.RunBackend = schema.DatabaseBackend(strings.ToLower(input.RunBackend))
	if cfg.RunBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunBackend]; !ok {
		return fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", input.RunBackend)
	}
	cfg.RunDBConnect = input.RunDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunBackend, cfg.RunDBConnect); err != nil {
		return err
	}

	// The two stores must not share a SQLite file
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		runPath := cfg.RunDBConnect
		if runPath == "" {
			runPath = GetRunDBFilePath()
		}
		if cachePath == runPath {
			return fmt.Errorf("cache and run storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates the output and display fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.MetricsFile = input.MetricsFile
	cfg.Subject = strings.TrimSpace(input.Subject)
	cfg.Watch = input.Watch

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", input.Output)
	}
	if (cfg.Output == schema.ParquetOut || cfg.Output == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s output", cfg.Output)
	}

	cfg.InputFormat = ""
	if input.InputFormat != "" {
		cfg.InputFormat = schema.InputFormat(strings.ToLower(input.InputFormat))
		if _, ok := schema.ValidInputFormats[cfg.InputFormat]; !ok {
			return fmt.Errorf("invalid input format '%s'. must be json, yaml, csv", input.InputFormat)
		}
	}

	cfg.Debounce = DefaultDebounce
	if input.Debounce != "" {
		d, err := time.ParseDuration(input.Debounce)
		if err != nil {
			return fmt.Errorf("invalid --debounce value: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("debounce cannot be negative (received %s)", d)
		}
		cfg.Debounce = d
	}

	cfg.Detector = nil
	if input.DetectorS != 0 || input.DetectorGamma != 0 {
		cfg.Detector = &schema.DetectorParams{S: input.DetectorS, Gamma: input.DetectorGamma}
	}
	return nil
}

// processTimeSettings validates the unit, timezone and lowest level.
func processTimeSettings(cfg *Config, input *ConfigRawInput) error {
	unit, err := algo.ParseTimeUnit(input.Unit)
	if err != nil {
		return err
	}
	cfg.Unit = unit

	tz := input.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	cfg.Location = loc

	if input.LowestLevel < 0 {
		return fmt.Errorf("lowest-level cannot be negative (received %d)", input.LowestLevel)
	}
	cfg.LowestLevel = input.LowestLevel
	return nil
}

// processDisplayRange parses --from and --to into a day-aligned window.
// Either end may be omitted; the window is only set when at least one is given.
func processDisplayRange(cfg *Config, input *ConfigRawInput) error {
	cfg.Range = nil
	if input.From == "" && input.To == "" {
		return nil
	}

	r := schema.DateRange{
		Start: time.Date(1, 1, 1, 0, 0, 0, 0, cfg.Location),
		End:   time.Date(9999, 12, 31, 0, 0, 0, 0, cfg.Location),
	}
	if input.From != "" {
		t, err := ParseDate(input.From, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid --from value: %w", err)
		}
		r.Start = t
	}
	if input.To != "" {
		t, err := ParseDate(input.To, cfg.Location)
		if err != nil {
			return fmt.Errorf("invalid --to value: %w", err)
		}
		r.End = t
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: %s is before %s", algo.ErrInvertedDateRange, r.End.Format(DateFormat), r.Start.Format(DateFormat))
	}
	cfg.Range = &r
	return nil
}

// ParseDate reads a YYYY-MM-DD or RFC3339 value and floors it to the day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(DateFormat, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateTimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s or RFC3339, got %q", DateFormat, s)
	}
	return algo.FloorToDay(t, loc), nil
}

// resolveInputPath makes the input path absolute and checks that it is a readable file.
func resolveInputPath(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = ""
	if input.InputPathStr == "" {
		return nil
	}
	absPath, err := filepath.Abs(input.InputPathStr)
	if err != nil {
		return fmt.Errorf("failed to resolve input path %q: %w", input.InputPathStr, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("cannot read input %q: %w", absPath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %q is a directory, expected a file", absPath)
	}
	cfg.InputPath = absPath
	return nil
}

// RevalidateThreshold applies a new lowest level to an already validated config.
func RevalidateThreshold(cfg *Config, lowestLevel int) error {
	if lowestLevel < 0 {
		return fmt.Errorf("lowest_level cannot be negative (received %d)", lowestLevel)
	}
	cfg.LowestLevel = lowestLevel
	return nil
}

// RevalidateTime applies a new unit and timezone to an already validated config.
// Empty values keep the current settings.
func RevalidateTime(cfg *Config, unit, timezone string) error {
	if unit != "" {
		u, err := algo.ParseTimeUnit(unit)
		if err != nil {
			return err
		}
		cfg.Unit = u
	}
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
		cfg.Location = loc
	}
	return nil
}

// RevalidateInput points an already validated config at a new input file.
// An empty format is detected from the extension later on.
func RevalidateInput(cfg *Config, path string, format schema.InputFormat) error {
	if format != "" {
		if _, ok := schema.ValidInputFormats[format]; !ok {
			return fmt.Errorf("invalid input format '%s'. must be json, yaml, csv", format)
		}
	}
	if err := resolveInputPath(cfg, &ConfigRawInput{InputPathStr: path}); err != nil {
		return err
	}
	cfg.InputFormat = format
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profile.Enabled = profilePrefix != ""
	profile.Prefix = profilePrefix
}
