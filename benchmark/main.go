// Package main benchmarks the burstline CLI against synthetic burst documents.
// Each document size is reduced several times without a cache and several
// times with the SQLite cache. The first successful cached run counts as cold
// and the rest are averaged as warm. Results are written as CSV.
//
// Prerequisites:
// - burstline binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for generated documents (defaults to a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Document    string
	Offsets     int
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Days        int
	Sizes       map[string]int
	Order       []string
}

// syntheticDocument mirrors the JSON input layout accepted by burstline.
type syntheticDocument struct {
	SVO     []string  `json:"svo"`
	Bursts  [][]int64 `json:"bursts"`
	Offsets []int64   `json:"offsets"`
}

func main() {
	if len(os.Args) > 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "burstline-bench-")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	}

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Days:        365,
		Sizes: map[string]int{
			"small":  1_000,
			"medium": 50_000,
			"large":  500_000,
		},
		Order: []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("burstline", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the burstline binary and the work dir exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("burstline"); err != nil {
		return fmt.Errorf("burstline binary not found in PATH")
	}
	if info, err := os.Stat(config.WorkDir); err != nil || !info.IsDir() {
		return fmt.Errorf("work dir %s is not a directory", config.WorkDir)
	}
	return nil
}

// generateDocument writes a document with n offsets spread over days days and
// a nested set of bursts in the middle of the window.
func generateDocument(path string, n, days int) error {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	span := int64(days) * 86400
	rng := rand.New(rand.NewPCG(uint64(n), uint64(days)))

	doc := syntheticDocument{
		SVO:     []string{"benchmark", "emits", "offsets"},
		Offsets: make([]int64, n),
	}
	for i := range doc.Offsets {
		doc.Offsets[i] = start + rng.Int64N(span)
	}
	doc.Offsets[0] = start
	doc.Offsets[n-1] = start + span - 1

	mid := start + span/2
	for level := int64(1); level <= 4; level++ {
		width := span / (4 * level)
		doc.Bursts = append(doc.Bursts, []int64{level, mid - width, mid + width})
	}

	data, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// runBenchmarks generates every document size and benchmarks it.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d documents, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Order {
		n := config.Sizes[name]
		path := filepath.Join(config.WorkDir, name+".json")
		fmt.Printf("Generating %s document (%d offsets)\n", name, n)
		if err := generateDocument(path, n, config.Days); err != nil {
			return nil, err
		}

		results = append(results, runBenchmarkSuite(config, name, path, n, ""))
	}

	return results, nil
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a document.
func runBenchmarkSuite(config BenchmarkConfig, name, path string, offsets int, extraArgs string) BenchmarkResult {
	fmt.Printf("Reducing %s\n", name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Document:    name,
		Offsets:     offsets,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark reduces path numRuns times with the given cache backend and
// returns the cold time and the warm times.
func runBenchmark(config BenchmarkConfig, path, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{"timeline", path, "--cache-backend", cacheBackend, "--output", "json", "--output-file", os.DevNull}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("burstline", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates the JSON timeline was written
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Wrote JSON timeline")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("burstline_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"document", "offsets", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Document, fmt.Sprint(result.Offsets), result.NoCacheTime, result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	fmt.Printf("Timeline Reduction:\n")
	for _, result := range results {
		fmt.Printf("  %-8s (%7d offsets): No-cache: %s, Cold: %s, Warm: %s\n",
			result.Document, result.Offsets, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
	fmt.Printf("Benchmark script completed successfully\n")
}
