package core

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/huangsam/burstline/internal/contract"
	"github.com/huangsam/burstline/internal/metrics"
	"github.com/huangsam/burstline/schema"
)

const (
	currentCacheVersion = schema.CacheFormatVersion
	cacheMaxAge         = schema.CacheMaxAge
)

// cachedReduce returns the stored timeline for raw when there is a fresh one,
// otherwise reduces and stores it. The bool reports a cache hit.
func cachedReduce(cfg *contract.Config, mgr contract.CacheManager, raw []byte, doc *schema.BurstDocument) (*schema.TimelineResult, bool, error) {
	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetResultStore()
	}
	if store == nil {
		// Fallback to direct computation
		result, err := reduceDocument(cfg, doc)
		return result, false, err
	}

	key := generateCacheKey(cfg, raw)

	if result := checkCacheHit(store, key); result != nil {
		metrics.Default().ObserveCache(true)
		return result, true, nil
	}
	metrics.Default().ObserveCache(false)

	result, err := computeAndStore(cfg, doc, store, key)
	return result, false, err
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.TimelineResult {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheMaxAge {
			var result schema.TimelineResult
			if err := sonic.Unmarshal(data, &result); err == nil {
				return &result // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// computeAndStore reduces the document and stores the result in cache
func computeAndStore(cfg *contract.Config, doc *schema.BurstDocument, store contract.CacheStore, key string) (*schema.TimelineResult, error) {
	result, err := reduceDocument(cfg, doc)
	if err != nil {
		return nil, err
	}

	if data, err := sonic.Marshal(result); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to store timeline in cache", err)
		}
	}

	return result, nil
}

// generateCacheKey fingerprints the input bytes together with every setting
// that changes the reduction.
func generateCacheKey(cfg *contract.Config, raw []byte) string {
	inputHash := sha256.Sum256(raw)

	window := ""
	if cfg.Range != nil {
		window = fmt.Sprintf("%d-%d", cfg.Range.Start.Unix(), cfg.Range.End.Unix())
	}
	tz := contract.DefaultTimezone
	if cfg.Location != nil {
		tz = cfg.Location.String()
	}

	key := fmt.Sprintf("%x:%s:%s:%d:%s:%s",
		inputHash,
		cfg.Unit,
		tz,
		cfg.LowestLevel,
		window,
		cfg.Subject,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
