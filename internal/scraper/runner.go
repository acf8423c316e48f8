// Package scraper invokes the external scraping process and parses its
// output contract: a final JSON summary on stdout plus a results file with
// the scraped product records.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/camperoutlet/camperdeals/internal/models"
)

// ErrScraperFailed wraps every acquisition failure: process errors, timeouts,
// malformed output, empty result sets. The pipeline treats them all the same
// way and falls back to the sample set.
var ErrScraperFailed = errors.New("scraper failed")

// Output is the typed result of a successful scraper run.
type Output struct {
	Records []models.RawScrapeRecord
	Count   int
}

type summary struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type resultsFile struct {
	Products []models.RawScrapeRecord `json:"products"`
}

// Runner executes the configured scraper command with a hard timeout.
type Runner struct {
	command     string
	resultsPath string
	timeout     time.Duration
	env         []string
}

// NewRunner builds a Runner. extraEnv entries ("KEY=value") are appended to
// the inherited environment.
func NewRunner(command, resultsPath string, timeout time.Duration, extraEnv ...string) *Runner {
	return &Runner{
		command:     command,
		resultsPath: resultsPath,
		timeout:     timeout,
		env:         extraEnv,
	}
}

// Run executes the scraper and returns its records. Any deviation from the
// output contract is reported as ErrScraperFailed; the process is never left
// running past the timeout.
func (r *Runner) Run(ctx context.Context) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	parts := strings.Fields(r.command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrScraperFailed)
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Env = append(os.Environ(), r.env...)

	stdout, err := cmd.Output()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: timed out after %s", ErrScraperFailed, r.timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			slog.Warn("Scraper stderr output", "stderr", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%w: %v", ErrScraperFailed, err)
	}

	sum, err := extractSummary(string(stdout))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScraperFailed, err)
	}
	if !sum.Success {
		return nil, fmt.Errorf("%w: summary reported success=false", ErrScraperFailed)
	}

	data, err := os.ReadFile(r.resultsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read results file: %v", ErrScraperFailed, err)
	}
	var results resultsFile
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("%w: parse results file: %v", ErrScraperFailed, err)
	}
	if len(results.Products) == 0 {
		return nil, fmt.Errorf("%w: results file contains no products", ErrScraperFailed)
	}

	return &Output{Records: results.Products, Count: sum.Count}, nil
}

// extractSummary finds the trailing JSON object in the scraper's stdout.
// The scraper logs progress lines first, so we scan upward from the bottom
// until a parsable JSON block is found.
func extractSummary(stdout string) (*summary, error) {
	lines := strings.Split(stdout, "\n")
	var kept []string
	for _, line := range lines {
		if trimmed := strings.TrimRight(line, " \t\r"); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}

	for i := len(kept) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(strings.Join(kept[i:], "\n"))
		if !strings.HasPrefix(candidate, "{") {
			continue
		}
		var sum summary
		if err := json.Unmarshal([]byte(candidate), &sum); err == nil {
			return &sum, nil
		}
	}
	return nil, errors.New("no JSON summary found in scraper output")
}
