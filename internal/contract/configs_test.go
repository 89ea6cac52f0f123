package contract

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/burstline/core/algo"
	"github.com/huangsam/burstline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation; tests mutate one field at a time.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Output:       "text",
		CacheBackend: "none",
		Emoji:        "no",
		Color:        "yes",
		Unit:         "s",
		Timezone:     "UTC",
	}
}

func TestProcessAndValidate(t *testing.T) {
	inputFile := filepath.Join(t.TempDir(), "bursts.json")
	require.NoError(t, os.WriteFile(inputFile, []byte("{}"), 0o644))

	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{"valid minimal config", func(*ConfigRawInput) {}, false},
		{"valid with input file", func(in *ConfigRawInput) { in.InputPathStr = inputFile }, false},
		{"missing input file", func(in *ConfigRawInput) { in.InputPathStr = inputFile + ".missing" }, true},
		{"input is a directory", func(in *ConfigRawInput) { in.InputPathStr = filepath.Dir(inputFile) }, true},
		{"invalid output", func(in *ConfigRawInput) { in.Output = "pdf" }, true},
		{"parquet needs output file", func(in *ConfigRawInput) { in.Output = "parquet" }, true},
		{"xlsx with output file", func(in *ConfigRawInput) { in.Output = "xlsx"; in.OutputFile = "out.xlsx" }, false},
		{"invalid unit", func(in *ConfigRawInput) { in.Unit = "weeks" }, true},
		{"invalid timezone", func(in *ConfigRawInput) { in.Timezone = "Mars/Olympus" }, true},
		{"negative lowest level", func(in *ConfigRawInput) { in.LowestLevel = -1 }, true},
		{"invalid color", func(in *ConfigRawInput) { in.Color = "sometimes" }, true},
		{"invalid emoji", func(in *ConfigRawInput) { in.Emoji = "sometimes" }, true},
		{"negative width", func(in *ConfigRawInput) { in.Width = -4 }, true},
		{"invalid input format", func(in *ConfigRawInput) { in.InputFormat = "xml" }, true},
		{"valid input format", func(in *ConfigRawInput) { in.InputFormat = "YAML" }, false},
		{"invalid debounce", func(in *ConfigRawInput) { in.Debounce = "soon" }, true},
		{"invalid from", func(in *ConfigRawInput) { in.From = "03/01/2024" }, true},
		{"inverted range", func(in *ConfigRawInput) { in.From = "2024-03-10"; in.To = "2024-03-01" }, true},
		{"invalid cache backend", func(in *ConfigRawInput) { in.CacheBackend = "redis" }, true},
		{"mysql without connection", func(in *ConfigRawInput) { in.CacheBackend = "mysql" }, true},
		{"invalid run backend", func(in *ConfigRawInput) { in.RunBackend = "redis" }, true},
		{"shared sqlite file", func(in *ConfigRawInput) {
			in.CacheBackend = "sqlite"
			in.RunBackend = "sqlite"
			in.CacheDBConnect = "same.db"
			in.RunDBConnect = "same.db"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidate_Populates(t *testing.T) {
	input := validInput()
	input.Unit = "ms"
	input.Timezone = "Europe/Berlin"
	input.LowestLevel = 2
	input.From = "2024-03-01"
	input.To = "2024-03-31T15:00:00Z"
	input.DetectorS = 2
	input.DetectorGamma = 0.5
	input.Debounce = "1s"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	assert.Equal(t, schema.UnitMillisecond, cfg.Unit)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 2, cfg.LowestLevel)
	require.NotNil(t, cfg.Range)
	assert.True(t, time.Date(2024, 3, 1, 0, 0, 0, 0, berlin).Equal(cfg.Range.Start))
	assert.True(t, time.Date(2024, 3, 31, 0, 0, 0, 0, berlin).Equal(cfg.Range.End))
	require.NotNil(t, cfg.Detector)
	assert.Equal(t, 0.5, cfg.Detector.Gamma)
	assert.Equal(t, time.Second, cfg.Debounce)
	assert.Equal(t, schema.NoneBackend, cfg.CacheBackend)
	assert.True(t, cfg.UseColors)
	assert.False(t, cfg.UseEmojis)
}

func TestProcessDisplayRange_OpenEnded(t *testing.T) {
	input := validInput()
	input.From = "2024-03-05"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	require.NotNil(t, cfg.Range)
	assert.True(t, cfg.Range.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, cfg.Range.Contains(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
}

func TestProcessAndValidate_InvertedRangeError(t *testing.T) {
	input := validInput()
	input.From = "2024-03-10"
	input.To = "2024-03-01"
	err := ProcessAndValidate(&Config{}, input)
	assert.ErrorIs(t, err, algo.ErrInvertedDateRange)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	assert.NoError(t, ValidateDatabaseConnectionString(schema.SQLiteBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.NoneBackend, ""))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "user:pass@tcp(localhost:3306)/burstline"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.MySQLBackend, "localhost:3306"))
	assert.NoError(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "host=localhost dbname=burstline"))
	assert.Error(t, ValidateDatabaseConnectionString(schema.PostgreSQLBackend, "dbname=burstline"))
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Range:    &schema.DateRange{Start: time.Unix(0, 0)},
		Detector: &schema.DetectorParams{S: 2},
	}
	clone := cfg.Clone()
	clone.Range.Start = time.Unix(100, 0)
	clone.Detector.S = 3
	assert.Equal(t, time.Unix(0, 0), cfg.Range.Start)
	assert.Equal(t, 2.0, cfg.Detector.S)
}

func TestRevalidate(t *testing.T) {
	cfg := &Config{Unit: schema.UnitSecond, Location: time.UTC}
	require.NoError(t, RevalidateTime(cfg, "ms", "Asia/Tokyo"))
	assert.Equal(t, schema.UnitMillisecond, cfg.Unit)
	assert.Equal(t, "Asia/Tokyo", cfg.Location.String())

	require.NoError(t, RevalidateTime(cfg, "", ""))
	assert.Equal(t, schema.UnitMillisecond, cfg.Unit)

	assert.Error(t, RevalidateTime(cfg, "fortnight", ""))
	assert.Error(t, RevalidateTime(cfg, "", "Nowhere/Land"))

	require.NoError(t, RevalidateThreshold(cfg, 3))
	assert.Equal(t, 3, cfg.LowestLevel)
	assert.Error(t, RevalidateThreshold(cfg, -1))
}

func TestRevalidateInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bursts.csv")
	require.NoError(t, os.WriteFile(path, []byte("kind,level,start,end\n"), 0o644))

	cfg := &Config{InputFormat: schema.JSONInput}
	require.NoError(t, RevalidateInput(cfg, path, ""))
	assert.Equal(t, path, cfg.InputPath)
	assert.Empty(t, cfg.InputFormat)

	require.NoError(t, RevalidateInput(cfg, path, schema.CSVInput))
	assert.Equal(t, schema.CSVInput, cfg.InputFormat)

	assert.Error(t, RevalidateInput(cfg, path, "toml"))
	assert.Error(t, RevalidateInput(cfg, dir, ""))
	assert.Error(t, RevalidateInput(cfg, filepath.Join(dir, "missing.json"), ""))
}
