package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/burstline/core/algo"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/metrics"
	"github.com/huangsam/burstline/schema"
)

// GetTimelineResult reduces the configured input file and reports how long it took.
func GetTimelineResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.TimelineResult, time.Duration, error) {
	in, err := FileInput(cfg)
	if err != nil {
		return nil, 0, err
	}
	return ReduceInput(ctx, cfg, mgr, in)
}

// ReduceInput reduces one document, going through the result cache and
// recording the run when a history store is configured.
func ReduceInput(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, in Input) (*schema.TimelineResult, time.Duration, error) {
	start := time.Now()
	m := metrics.Default()

	if !shouldSuppressHeader(ctx) {
		logTimelineHeader(cfg, in.Name)
	}

	doc, err := in.decode(cfg)
	if err != nil {
		m.ObserveReduction(metrics.OutcomeFailed, time.Since(start))
		return nil, 0, err
	}

	// --- 0. Begin Run Tracking (if configured) ---
	ctx = beginRun(ctx, cfg, mgr, subjectFor(cfg, doc), start)

	// --- 1. Reduction (with caching) ---
	result, hit, err := cachedReduce(cfg, mgr, in.Data, doc)
	if err != nil {
		m.ObserveReduction(metrics.OutcomeFailed, time.Since(start))
		return nil, 0, err
	}
	// The detector settings only label the output, so they are not part of the key
	result.Detector = cfg.Detector

	// --- 2. End Run Tracking ---
	endRun(ctx, mgr, result)

	duration := time.Since(start)
	outcome := metrics.OutcomeReduced
	if hit {
		outcome = metrics.OutcomeCached
	}
	m.ObserveReduction(outcome, duration)
	m.ObserveTimeline(len(result.Timeline), result.MaxLevel)
	return result, duration, nil
}

// reduceDocument turns a decoded document into a labelled, windowed timeline.
func reduceDocument(cfg *contract.Config, doc *schema.BurstDocument) (*schema.TimelineResult, error) {
	loc := locationOf(cfg)

	buckets, err := algo.BuildDayBuckets(doc.Offsets, loc)
	if err != nil {
		return nil, err
	}
	timeline := algo.ReduceBuckets(buckets, doc.Bursts)
	counts := algo.DailyOffsetCounts(buckets)

	window := cfg.Range
	if cfg.LowestLevel > 0 {
		derived, err := algo.RestrictToMinLevel(doc.Bursts, cfg.LowestLevel, loc)
		if err != nil {
			return nil, err
		}
		window = &derived
	}
	if window != nil {
		timeline = algo.ClipTimeline(timeline, *window)
		counts = algo.ClipDailyCounts(counts, *window)
	}

	return &schema.TimelineResult{
		Subject:     subjectFor(cfg, doc),
		Unit:        cfg.Unit,
		Location:    loc.String(),
		LowestLevel: cfg.LowestLevel,
		MaxLevel:    algo.MaxTimelineLevel(timeline),
		Range:       window,
		Detector:    cfg.Detector,
		Bursts:      doc.Bursts,
		DailyCounts: counts,
		Timeline:    timeline,
	}, nil
}

// GetRangeResult derives the display window of the configured input file.
func GetRangeResult(ctx context.Context, cfg *contract.Config) (*schema.RangeResult, error) {
	in, err := FileInput(cfg)
	if err != nil {
		return nil, err
	}
	return RangeForInput(ctx, cfg, in)
}

// RangeForInput derives the display window spanned by bursts at or above the
// configured lowest level.
func RangeForInput(ctx context.Context, cfg *contract.Config, in Input) (*schema.RangeResult, error) {
	if !shouldSuppressHeader(ctx) {
		logTimelineHeader(cfg, in.Name)
	}
	doc, err := in.decode(cfg)
	if err != nil {
		return nil, err
	}
	r, err := algo.RestrictToMinLevel(doc.Bursts, cfg.LowestLevel, locationOf(cfg))
	if err != nil {
		return nil, err
	}
	return &schema.RangeResult{
		Subject:     subjectFor(cfg, doc),
		LowestLevel: cfg.LowestLevel,
		Start:       r.Start,
		End:         r.End,
	}, nil
}

// beginRun opens a history entry and carries its ID in the returned context.
func beginRun(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, subject string, start time.Time) context.Context {
	if mgr == nil {
		return ctx
	}
	runs := mgr.GetRunStore()
	if runs == nil {
		return ctx
	}

	configParams := map[string]any{
		"input":        cfg.InputPath,
		"unit":         string(cfg.Unit),
		"timezone":     locationOf(cfg).String(),
		"lowest_level": cfg.LowestLevel,
	}
	if cfg.Range != nil {
		configParams["from"] = cfg.Range.Start.Format(contract.DateFormat)
		configParams["to"] = cfg.Range.End.Format(contract.DateFormat)
	}

	runID, err := runs.BeginRun(start, subject, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return ctx
	}
	if runID > 0 {
		ctx = withRunID(ctx, runID)
	}
	return ctx
}

// endRun stores the days of result and closes the history entry.
func endRun(ctx context.Context, mgr contract.CacheManager, result *schema.TimelineResult) {
	runID, ok := getRunID(ctx)
	if !ok || mgr == nil {
		return
	}
	runs := mgr.GetRunStore()
	if runs == nil {
		return
	}
	if err := runs.RecordDays(runID, result.DailyCounts, result.Timeline); err != nil {
		contract.LogWarn(fmt.Sprintf("Failed to record days for run %d", runID), err)
	}
	if err := runs.EndRun(runID, time.Now(), len(result.Timeline), result.MaxLevel); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// subjectFor prefers the configured subject over the document's tuple.
func subjectFor(cfg *contract.Config, doc *schema.BurstDocument) string {
	if cfg.Subject != "" {
		return cfg.Subject
	}
	return contract.SubjectFromSVO(doc.SVO)
}

func locationOf(cfg *contract.Config) *time.Location {
	if cfg.Location == nil {
		return time.UTC
	}
	return cfg.Location
}
