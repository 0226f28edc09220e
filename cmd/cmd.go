// Package cmd defines the command-line interface for commitpulse.
package cmd

import (
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(contributorsCmd)
	rootCmd.AddCommand(heatmapCmd)
	rootCmd.AddCommand(weekdaysCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(velocityCmd)
	rootCmd.AddCommand(activeCodeCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(registryCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	dashboardCmd.AddCommand(dashboardGenerateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)
	cacheCmd.AddCommand(cacheForgetProductCmd)

	// Add the registry subcommands to the parent registry command
	registryCmd.AddCommand(registryStatusCmd)
	registryCmd.AddCommand(registryMigrateCmd)
	registryCmd.AddCommand(productCmd)
	registryCmd.AddCommand(repoCmd)
	registryCmd.AddCommand(memberCmd)
	registryCmd.AddCommand(tokenCmd)
	productCmd.AddCommand(productAddCmd)
	repoCmd.AddCommand(repoLinkCmd)
	memberCmd.AddCommand(memberAddCmd)
	tokenCmd.AddCommand(tokenSetCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("product", "p", "", "Product id to analyze")
	rootCmd.PersistentFlags().StringP("user", "u", "", "Acting user id (credential owner)")
	rootCmd.PersistentFlags().String("org", "", "Restrict dashboards to one organization id")
	rootCmd.PersistentFlags().String("repos", "", "Comma-separated subset of repository ids")
	rootCmd.PersistentFlags().String("period", string(schema.DefaultPeriod), "Time window: 24h or 48h or 7d or 14d or 30d or 90d or 365d")
	rootCmd.PersistentFlags().Int("days", 7, "Dashboard window in days: 7 or 14 or 30")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for weekday bucketing (default: local)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("stats-concurrency", contract.DefaultStatsConcurrency, "Concurrent commit statistics requests")
	rootCmd.PersistentFlags().Int("repo-concurrency", contract.DefaultRepoConcurrency, "Concurrent repository fetches")
	rootCmd.PersistentFlags().Int("product-concurrency", contract.DefaultProductConcurrency, "Concurrent products in dashboards")
	rootCmd.PersistentFlags().Int("per-repo-limit", contract.DefaultPerRepoLimit, "Maximum commits fetched per repository")
	rootCmd.PersistentFlags().String("product-timeout", contract.DefaultProductTimeout.String(), "Per-product deadline in dashboards")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("registry-backend", string(schema.SQLiteBackend), "Registry backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("registry-db-connect", "", "Database connection string for the registry (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("github-base-url", "", "GitHub Enterprise API base URL (default: api.github.com)")
	rootCmd.PersistentFlags().String("genai-api-key", "", "Gemini API key for shipped narratives")
	rootCmd.PersistentFlags().String("genai-model", contract.DefaultGenAIModel, "Gemini model for shipped narratives")
	rootCmd.PersistentFlags().String("secret-key", "", "Key that seals stored access tokens")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9090)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of contributorsCmd and leaderboardCmd to Viper
	contributorsCmd.Flags().String("sort-by", string(schema.SortByCommits), "Sort contributors by: commits or additions or last_active")
	if err := viper.BindPFlags(contributorsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding contributors flags", err)
	}
	leaderboardCmd.Flags().String("rank-by", string(schema.RankByCommits), "Rank contributors by: commits or additions or active_days or files_changed")
	if err := viper.BindPFlags(leaderboardCmd.Flags()); err != nil {
		contract.LogFatal("Error binding leaderboard flags", err)
	}

	// Migration targets
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	registryMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")

	// Registry management flags are local to each command
	productAddCmd.Flags().String("name", "", "Product name")
	productAddCmd.Flags().String("product-color", "", "Product color (e.g., #3366ff)")
	productAddCmd.Flags().String("id", "", "Product id (generated when empty)")
	repoLinkCmd.Flags().String("full-name", "", "Repository owner/name")
	repoLinkCmd.Flags().String("branch", "main", "Default branch")
	repoLinkCmd.Flags().Int64("provider-id", 0, "Stable numeric repository id at the provider")
	memberAddCmd.Flags().String("role", schema.RoleMember, "Member role: owner or admin or member")
	tokenSetCmd.Flags().String("token", "", "Access token (prompted when empty)")
}
