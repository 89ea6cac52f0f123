package cmd

import (
	"fmt"
	"time"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/iocache"
	"github.com/huangsam/burstline/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup opens only the timeline cache. No input document, time settings
// or run history are needed to inspect it.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := readConfigFile(); err != nil {
		return err
	}

	cfg.CacheBackend = schema.DatabaseBackend(viper.GetString("cache-backend"))
	cfg.CacheDBConnect = viper.GetString("cache-db-connect")
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", cfg.CacheBackend)
	}
	if err := contract.ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect, "", ""); err != nil {
		return fmt.Errorf("failed to open timeline cache: %w", err)
	}
	return nil
}

// timelineCache returns the open cache store or exits when caching is off.
func timelineCache() contract.CacheStore {
	store := iocache.Manager.GetResultStore()
	if store == nil {
		contract.LogFatal("Timeline cache is unavailable", fmt.Errorf("backend %s", cfg.CacheBackend))
	}
	return store
}

// cacheCmd groups the timeline cache commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the reduced timeline cache",
	Long: `Every reduction is stored under a fingerprint of the input document, the
time unit, the timezone, the lowest level, the display window and the subject.
Rerunning with the same inputs reuses the stored timeline for up to seven days.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Cached subjects and days, stale entries, storage size
  prune  - Remove timelines that lookups would no longer use
  clear  - Remove every cached timeline

Examples:
  burstline cache status
  burstline cache prune --older-than 24h
  BURSTLINE_CACHE_BACKEND=postgresql BURSTLINE_CACHE_DB_CONNECT="..." burstline cache clear`,
}

// cacheStatusCmd summarizes what the cache holds.
var cacheStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show cached subjects, days and stale entries",
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := timelineCache().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to read cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}

// cachePruneCmd drops expired timelines and those from older formats.
var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired or outdated cached timelines",
	Long: `Delete timelines stored longer ago than --older-than (default seven days)
and timelines written by an older cache format. Fresh entries are kept.`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		maxAge := viper.GetDuration("older-than")
		if maxAge <= 0 {
			contract.LogFatal("Invalid --older-than", fmt.Errorf("%s must be positive", maxAge))
		}
		cutoff := time.Now().Add(-maxAge).Unix()
		removed, err := timelineCache().Prune(cutoff, schema.CacheFormatVersion)
		if err != nil {
			contract.LogFatal("Failed to prune cache", err)
		}
		fmt.Printf("Pruned %d cached timelines.\n", removed)
	},
}

// cacheClearCmd removes the cache entirely.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached timeline",
	Long: `Delete the SQLite cache file, or drop the cache table on MySQL and PostgreSQL.
Timelines are recomputed on the next run.`,
	PreRunE: cacheSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Timeline cache cleared.")
	},
}
