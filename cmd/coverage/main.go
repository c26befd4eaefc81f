// Command coverage walks every Gregorian date in a range through a running
// API and reports the dates no Igbo year contains. Gaps appear where a
// year's new moon alignment lands after the previous year has ended.
//
// Usage:
//
//	go run ./cmd/coverage -url http://localhost:8080 -start 2024 -years 4
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"
)

// APIResponse matches the API response structure
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// LocateResponse is the subset of /api/v1/locate/{date} this tool reads.
type LocateResponse struct {
	YearIndex  int    `json:"year_index"`
	MonthIndex int    `json:"month_index"`
	MonthName  string `json:"month_name"`
	Day        struct {
		IgboDay   int    `json:"igbo_day"`
		MarketDay string `json:"market_day"`
	} `json:"day"`
}

// TestResult holds the result for a single date
type TestResult struct {
	Date      string `json:"date"`
	Covered   bool   `json:"covered"`
	YearIndex int    `json:"year_index,omitempty"`
	Month     string `json:"month,omitempty"`
	IgboDay   int    `json:"igbo_day,omitempty"`
	MarketDay string `json:"market_day,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Gap is a run of consecutive uncovered dates.
type Gap struct {
	From string `json:"from"`
	To   string `json:"to"`
	Days int    `json:"days"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 2024, "Start year")
	years := flag.Int("years", 4, "Number of years to test")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("Igbo Calendar API - Coverage Test")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Println()

	// Check if server is reachable
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	results := testAllDates(client, *baseURL, *startYear, endYear, *verbose)
	gaps := findGaps(results)
	failures := countErrors(results)

	printSummary(results, gaps, failures, *startYear, endYear)

	if *outputFile != "" {
		saveResults(*outputFile, results, gaps)
	}

	if len(gaps) > 0 || failures > 0 {
		os.Exit(1)
	}
}

func testAllDates(client *http.Client, baseURL string, startYear, endYear int, verbose bool) []TestResult {
	start := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, 12, 31, 0, 0, 0, 0, time.UTC)
	totalDays := int(end.Sub(start).Hours()/24) + 1

	fmt.Printf("Testing %d days...\n\n", totalDays)

	results := make([]TestResult, 0, totalDays)
	lastProgress := -1

	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		dateStr := current.Format("2006-01-02")
		result := testDate(client, baseURL, dateStr)
		results = append(results, result)

		progress := (len(results) * 100) / totalDays
		if progress != lastProgress && progress%10 == 0 {
			fmt.Printf("  Progress: %d%% (%d/%d)\n", progress, len(results), totalDays)
			lastProgress = progress
		}

		if verbose {
			switch {
			case result.Error != "":
				fmt.Printf("  ! %s: %s\n", dateStr, result.Error)
			case !result.Covered:
				fmt.Printf("  ✗ %s: not covered\n", dateStr)
			default:
				fmt.Printf("  ✓ %s: %d %s day %d (%s)\n",
					dateStr, result.YearIndex, result.Month, result.IgboDay, result.MarketDay)
			}
		}
	}

	fmt.Println()
	return results
}

func testDate(client *http.Client, baseURL, dateStr string) TestResult {
	result := TestResult{Date: dateStr}

	resp, err := client.Get(fmt.Sprintf("%s/api/v1/locate/%s", baseURL, dateStr))
	if err != nil {
		result.Error = fmt.Sprintf("Connection error: %v", err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("Read error: %v", err)
		return result
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		result.Error = fmt.Sprintf("Parse error: %v", err)
		return result
	}

	if resp.StatusCode == http.StatusNotFound {
		return result
	}

	if !apiResp.Success {
		result.Error = "Unknown error"
		if apiResp.Error != nil {
			result.Error = apiResp.Error.Message
		}
		return result
	}

	var data LocateResponse
	if err := json.Unmarshal(apiResp.Data, &data); err != nil {
		result.Error = fmt.Sprintf("Data parse error: %v", err)
		return result
	}

	result.Covered = true
	result.YearIndex = data.YearIndex
	result.Month = data.MonthName
	result.IgboDay = data.Day.IgboDay
	result.MarketDay = data.Day.MarketDay
	return result
}

// findGaps groups consecutive uncovered dates. Results must be in date order.
func findGaps(results []TestResult) []Gap {
	var gaps []Gap
	var current *Gap

	for _, r := range results {
		if r.Covered || r.Error != "" {
			current = nil
			continue
		}
		if current == nil {
			gaps = append(gaps, Gap{From: r.Date})
			current = &gaps[len(gaps)-1]
		}
		current.To = r.Date
		current.Days++
	}

	return gaps
}

func countErrors(results []TestResult) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}

func printSummary(results []TestResult, gaps []Gap, failures, startYear, endYear int) {
	covered := 0
	byYear := make(map[int]int)
	for _, r := range results {
		if r.Covered {
			covered++
			byYear[r.YearIndex]++
		}
	}

	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Total Days Tested: %d\n", len(results))
	fmt.Printf("Covered:           %d (%.1f%%)\n", covered,
		float64(covered)/float64(len(results))*100)
	fmt.Printf("Request errors:    %d\n", failures)
	fmt.Println()

	fmt.Println("Days by Igbo year:")
	indices := make([]int, 0, len(byYear))
	for index := range byYear {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	for _, index := range indices {
		fmt.Printf("  %d: %d days\n", index, byYear[index])
	}
	fmt.Println()

	if len(gaps) == 0 {
		fmt.Printf("No gaps between %d and %d! 🎉\n", startYear, endYear)
		return
	}

	fmt.Println("================================================================")
	fmt.Println("GAPS")
	fmt.Println("================================================================")
	for _, g := range gaps {
		fmt.Printf("  %s .. %s (%d days)\n", g.From, g.To, g.Days)
	}
	fmt.Println()
}

func saveResults(filename string, results []TestResult, gaps []Gap) {
	output := struct {
		GeneratedAt string       `json:"generated_at"`
		Gaps        []Gap        `json:"gaps"`
		Results     []TestResult `json:"results"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Gaps:        gaps,
		Results:     results,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		return
	}

	fmt.Printf("Results saved to: %s\n", filename)
}
