// Package core has core logic for loading, caching and reducing burst timelines.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/metrics"
	"github.com/huangsam/burstline/internal/outwriter"
	"github.com/huangsam/burstline/internal/watch"
)

// ExecutorFunc defines the function signature for the commands that reduce an input.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteTimeline reduces the input file and prints the timeline.
// It serves as the main entry point for the 'timeline' command.
func ExecuteTimeline(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetTimelineResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteTimeline(*result, cfg, duration); err != nil {
		return err
	}
	if err := metrics.Default().WriteTextfile(cfg.MetricsFile); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to write metrics to %s", cfg.MetricsFile), err)
	}
	return nil
}

// ExecuteRange prints only the display window derived from the lowest level.
// It serves as the main entry point for the 'range' command.
func ExecuteRange(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	result, err := GetRangeResult(ctx, cfg)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRange(*result, cfg)
}

// WatchTimeline runs ExecuteTimeline once, then again every time the input
// file changes, until ctx is cancelled. Failed reruns are reported and the
// watch goes on, so a half-saved file does not end the session.
func WatchTimeline(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	if cfg.InputPath == "" {
		return ErrNoInput
	}
	fw, err := watch.NewFileWatcher(cfg.InputPath, cfg.Debounce)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go fw.Run(ctx)

	if err := ExecuteTimeline(ctx, cfg, mgr); err != nil {
		contract.LogWarn("Timeline reduction failed, waiting for changes", err)
	}
	for range fw.Changes() {
		if err := ExecuteTimeline(ctx, cfg, mgr); err != nil {
			contract.LogWarn("Timeline reduction failed, waiting for changes", err)
		}
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
