package cmd

import (
	"github.com/huangsam/commitpulse/core"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/spf13/cobra"
)

// viewRun adapts an executor into a command body.
func viewRun(name string, exec core.ExecutorFunc) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, _ []string) {
		if err := exec(rootCtx, cfg, iocache.Manager); err != nil {
			contract.LogFatal("Cannot run "+name, err)
		}
	}
}

// summaryCmd prints the product summary.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize a product's recent commit activity.",
	Long: `Gather commits from every repository linked to a product and summarize them.

Shows:
- Commit, contributor and line totals
- Focus areas (most active repositories)
- Top contributors and the latest commits
- Pulse: cadence and velocity label
- Commit quality: conventional commit share and commit types

Examples:
  # Summarize the last week of a product
  commitpulse summary --product web --user alice

  # Summarize the last month as JSON
  commitpulse summary -p web -u alice --period 30d --output json`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("summary", core.ExecuteSummary),
}

// contributorsCmd lists contributors.
var contributorsCmd = &cobra.Command{
	Use:   "contributors",
	Short: "List a product's contributors with their activity.",
	Long: `List every contributor of a product with totals, focus areas and recent commits.

Examples:
  # Contributors ordered by lines added
  commitpulse contributors -p web -u alice --sort-by additions

  # Export to CSV
  commitpulse contributors -p web -u alice --output csv --output-file contributors.csv`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("contributors", core.ExecuteContributors),
}

// heatmapCmd prints the contributor by date grid.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Show commits per contributor per day.",
	Long: `Build a contributor by date grid of commit counts for a product.

Examples:
  commitpulse heatmap -p web -u alice --period 14d`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("heatmap", core.ExecuteHeatmap),
}

// weekdaysCmd prints the weekday distribution.
var weekdaysCmd = &cobra.Command{
	Use:     "weekdays",
	Aliases: []string{"day-of-week"},
	Short:   "Show commits per weekday.",
	Long: `Count a product's commits per weekday in the requested timezone.

Examples:
  commitpulse weekdays -p web -u alice --period 90d --timezone America/New_York`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("weekday distribution", core.ExecuteDayOfWeek),
}

// leaderboardCmd ranks contributors.
var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank a product's contributors.",
	Long: `Rank contributors by commits, additions, active days or files changed.

Examples:
  commitpulse leaderboard -p web -u alice --rank-by active_days --period 30d`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("leaderboard", core.ExecuteLeaderboard),
}

// velocityCmd compares the current window with the previous one.
var velocityCmd = &cobra.Command{
	Use:   "velocity",
	Short: "Compare velocity against the previous window.",
	Long: `Compare a product's commits and lines against the window right before it.

Shows:
- Current and previous totals with percent change
- Insights about trend, busiest day and top contributor
- Per-repository cadence

Examples:
  commitpulse velocity -p web -u alice --period 14d`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("velocity", core.ExecuteVelocity),
}

// activeCodeCmd lists the most changed files and directories.
var activeCodeCmd = &cobra.Command{
	Use:   "active-code",
	Short: "Show the files and directories that changed the most.",
	Long: `Collect the files touched by recent commits and rank them by changes.

Examples:
  commitpulse active-code -p web -u alice --period 7d`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("active code", core.ExecuteActiveCode),
}

// dashboardCmd prints the cross-product dashboard.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show activity across all products of a user.",
	Long: `Aggregate activity across the products a user can access and attach the
cached shipped narratives. Nothing is generated by this command.

Examples:
  commitpulse dashboard -u alice --days 14

  # Regenerate narratives first
  commitpulse dashboard generate -u alice --days 7`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("dashboard", core.ExecuteDashboard),
}

// dashboardGenerateCmd regenerates shipped narratives.
var dashboardGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Regenerate shipped narratives and show the dashboard.",
	Long: `Summarize every product's commits into a shipped narrative with Gemini,
store the narratives and print the dashboard. Requires --genai-api-key.

Examples:
  COMMITPULSE_GENAI_API_KEY=... commitpulse dashboard generate -u alice`,
	PreRunE: sharedSetupWrapper,
	Run:     viewRun("dashboard generation", core.ExecuteGenerateDashboard),
}
