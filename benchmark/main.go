// Package main provides a performance benchmarking tool for the commitpulse CLI.
// It measures how long each view takes for a product with the commit statistics
// cache disabled, on a cold cache and on a warm cache, and writes the timings to CSV.
//
// Prerequisites:
// - commitpulse binary installed and available in PATH
// - A registry holding the product, its repositories and the user's token
//
// Usage: go run benchmark/main.go <product-id> <user-id>
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// BenchmarkResult holds the result of one view (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	Period      string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	ProductID   string
	UserID      string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Commands    []string
	Periods     []string
}

func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s <product-id> <user-id>\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		ProductID:   os.Args[1],
		UserID:      os.Args[2],
		Timeout:     5 * time.Minute,
		NoCacheRuns: 2,
		CacheRuns:   4,
		Commands:    []string{"summary", "leaderboard", "velocity", "active-code"},
		Periods:     []string{"7d", "30d"},
	}

	if _, err := exec.LookPath("commitpulse"); err != nil {
		fmt.Println("Prerequisites check failed: commitpulse binary not found in PATH")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes every view for every period.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: product %s, %v timeout, no-cache: %d runs, cache: %d runs\n",
		config.ProductID, config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, period := range config.Periods {
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, command, period))
		}
	}
	return results
}

// clearCache empties the statistics cache so the next run starts cold.
func clearCache() {
	if output, err := exec.Command("commitpulse", "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	}
}

// runBenchmarkSuite runs both no-cache and cache phases for a view.
func runBenchmarkSuite(config BenchmarkConfig, command, period string) BenchmarkResult {
	fmt.Printf("Running %s for %s\n", command, period)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, command, period, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	// Phase 1: every commit's statistics come from the provider
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: the first run fills the cache, the rest read from it
	clearCache()
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     command,
		Period:      period,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a view several times and returns the first time and the rest.
func runBenchmark(config BenchmarkConfig, command, period, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--product", config.ProductID,
		"--user", config.UserID,
		"--period", period,
		"--cache-backend", cacheBackend,
		"--output", "json",
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "commitpulse", args...).Output()
		elapsed := time.Since(start).Seconds()
		cancel()

		if err == nil && json.Valid(output) {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/commitpulse_benchmark_%s.csv", timestamp)

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
	if err := writer.Write([]string{"cmd", "period", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.Period, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, result := range results {
		fmt.Printf("  %-12s %-4s: No-cache: %s, Cold: %s, Warm: %s\n",
			result.Command, result.Period, result.NoCacheTime, result.ColdTime, result.WarmTime)
	}
}
