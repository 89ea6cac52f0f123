// Package cmd defines the command-line interface for burstline.
package cmd

import (
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	// Add the runs subcommands to the parent runs command
	runsCmd.AddCommand(runsClearCmd)
	runsCmd.AddCommand(runsStatusCmd)
	runsCmd.AddCommand(runsExportCmd)
	runsCmd.AddCommand(runsMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("unit", string(schema.UnitSecond), "Unit of epoch numbers in the input: D or h or m or s or ms or us or ns")
	rootCmd.PersistentFlags().String("timezone", contract.DefaultTimezone, "IANA timezone that defines calendar days")
	rootCmd.PersistentFlags().Int("lowest-level", 0, "Only show the window spanned by bursts at or above this level (0 = off)")
	rootCmd.PersistentFlags().String("input-format", "", "Input format: json or yaml or csv (default: detect from extension)")
	rootCmd.PersistentFlags().String("subject", "", "Label for the timeline (default: the document's svo tuple)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet or xlsx")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this textfile after each run")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("run-backend", "", "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("run-db-connect", "", "Database connection string for run history (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of timelineCmd to Viper
	timelineCmd.Flags().String("from", "", "First day to show (YYYY-MM-DD or RFC3339)")
	timelineCmd.Flags().String("to", "", "Last day to show (YYYY-MM-DD or RFC3339)")
	timelineCmd.Flags().Bool("watch", false, "Reduce again whenever the input file changes")
	timelineCmd.Flags().String("debounce", contract.DefaultDebounce.String(), "Quiet period before a change triggers a rerun")
	timelineCmd.Flags().Float64("detector-s", 0, "Burst detector s parameter, shown in the level axis label")
	timelineCmd.Flags().Float64("detector-gamma", 0, "Burst detector gamma parameter, shown in the level axis label")
	if err := viper.BindPFlags(timelineCmd.Flags()); err != nil {
		contract.LogFatal("Error binding timeline flags", err)
	}

	cachePruneCmd.Flags().Duration("older-than", schema.CacheMaxAge, "Remove timelines stored longer ago than this")
	if err := viper.BindPFlags(cachePruneCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache prune flags", err)
	}

	// Bind all flags of runsMigrateCmd to Viper
	runsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(runsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding runs migrate flags", err)
	}
}
