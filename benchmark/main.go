// Package main provides a performance benchmarking tool for the meterflow CLI.
// It measures query times per command and granularity against a live object
// store, running each query multiple times, treating the first successful run
// as cold and averaging the rest as warm, generating CSV output for
// performance analysis and documentation.
//
// Prerequisites:
// - meterflow binary installed and available in PATH
// - MinIO endpoint with seeded household/ward buckets
// - METERFLOW_ENDPOINT, METERFLOW_ACCESS_KEY, METERFLOW_SECRET_KEY exported
//
// Usage: go run benchmark/main.go [device-id]
//
//	device-id: Device to query in the household bucket
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Command     string
	Granularity string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DeviceID      string
	Start         string
	End           string
	Timeout       time.Duration
	Workers       int
	Runs          int
	Granularities []string
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [device-id]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DeviceID:      os.Args[1],
		Start:         "2025-06-01",
		End:           "2025-06-30",
		Timeout:       2 * time.Minute,
		Workers:       8,
		Runs:          4,
		Granularities: []string{"1m", "1h", "1d"},
	}

	if err := checkPrerequisites(); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the meterflow binary and store settings exist
func checkPrerequisites() error {
	if _, err := exec.LookPath("meterflow"); err != nil {
		return fmt.Errorf("meterflow binary not found in PATH")
	}

	for _, key := range []string{"METERFLOW_ENDPOINT", "METERFLOW_ACCESS_KEY", "METERFLOW_SECRET_KEY"} {
		if os.Getenv(key) == "" {
			return fmt.Errorf("%s is not set", key)
		}
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured granularities
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: device %s, %v timeout, %d workers, %d runs\n",
		config.DeviceID, config.Timeout, config.Workers, config.Runs)

	for _, granularity := range config.Granularities {
		fmt.Printf("Benchmarking granularity %s\n", granularity)

		for _, command := range []string{"chart", "usage", "daily"} {
			result := runBenchmarkSuite(config, command, granularity)
			results = append(results, result)
		}
	}

	// Household reports ignore granularity; run them once.
	results = append(results, runBenchmarkSuite(config, "household", ""))

	return results
}

// runBenchmarkSuite runs cold and warm benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, command, granularity string) BenchmarkResult {
	fmt.Printf("Running %s queries\n", command)

	cold, times := runBenchmark(config, command, granularity)

	coldTimeStr := "TIMEOUT"
	if cold > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", cold)
	}

	warmAvg := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Command:     command,
		Granularity: granularity,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a meterflow command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command, granularity string) (coldTime float64, warmTimes []float64) {
	args := []string{
		command,
		"--start", config.Start,
		"--end", config.End,
		"--workers", fmt.Sprintf("%d", config.Workers),
	}
	if command == "household" {
		args = append(args, config.DeviceID)
	} else {
		args = append(args, "--device", config.DeviceID, "--granularity", granularity)
	}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("meterflow", args...)

		done := make(chan bool)
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
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)

	return strings.Contains(outputStr, "completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/meterflow_benchmark_%s.csv", timestamp)

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

	// Write header
	if err := writer.Write([]string{"cmd", "granularity", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.Granularity, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "chart", "Chart Queries:")
	printCommandSummary(results, "usage", "Usage Queries:")
	printCommandSummary(results, "daily", "Daily Queries:")
	printCommandSummary(results, "household", "Household Reports:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-4s: Cold: %s, Warm: %s\n", result.Granularity, result.ColdTime, result.WarmTime)
		}
	}
}
