// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteSummary prints the product summary using the configured output format.
func (ow *OutWriter) WriteSummary(result schema.SummaryResult, cfg *contract.Config, duration time.Duration) error {
	return WriteSummaryResult(result, cfg, duration)
}

// WriteContributors prints the contributor details using the configured output format.
func (ow *OutWriter) WriteContributors(result schema.ContributorsResult, cfg *contract.Config, duration time.Duration) error {
	return WriteContributorsResult(result, cfg, duration)
}

// WriteHeatmap prints the contributor heatmap using the configured output format.
func (ow *OutWriter) WriteHeatmap(result schema.HeatmapResult, cfg *contract.Config, duration time.Duration) error {
	return WriteHeatmapResult(result, cfg, duration)
}

// WriteDayOfWeek prints the weekday distribution using the configured output format.
func (ow *OutWriter) WriteDayOfWeek(result schema.DayOfWeekResult, cfg *contract.Config, duration time.Duration) error {
	return WriteDayOfWeekResult(result, cfg, duration)
}

// WriteLeaderboard prints the leaderboard using the configured output format.
func (ow *OutWriter) WriteLeaderboard(result schema.LeaderboardResult, cfg *contract.Config, duration time.Duration) error {
	return WriteLeaderboardResult(result, cfg, duration)
}

// WriteVelocity prints the velocity view using the configured output format.
func (ow *OutWriter) WriteVelocity(result schema.VelocityResult, cfg *contract.Config, duration time.Duration) error {
	return WriteVelocityResult(result, cfg, duration)
}

// WriteActiveCode prints file and directory hotspots using the configured output format.
func (ow *OutWriter) WriteActiveCode(result schema.ActiveCodeResult, cfg *contract.Config, duration time.Duration) error {
	return WriteActiveCodeResult(result, cfg, duration)
}

// WriteDashboard prints the cross-product dashboard using the configured output format.
func (ow *OutWriter) WriteDashboard(result schema.DashboardResult, cfg *contract.Config, duration time.Duration) error {
	return WriteDashboardResult(result, cfg, duration)
}

// GetMaxTablePathWidth calculates the maximum width for paths and messages in
// table output, leaving reserved columns for the fixed numeric fields.
func GetMaxTablePathWidth(cfg *contract.Config, reserved int) int {
	termWidth := cfg.Width
	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Borders, separators and padding
	available := termWidth - reserved - 20
	if available < 15 {
		return 15
	}
	if available > 70 {
		return 70
	}
	return available
}
