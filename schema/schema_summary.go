package schema

// DailyCount is one day of a commit-count series.
type DailyCount struct {
	Date    string `json:"date"`
	Commits int    `json:"commits"`
}

// ContributorStats holds aggregate totals for one author.
type ContributorStats struct {
	Author       string `json:"author"`
	AvatarURL    string `json:"avatar_url"`
	Commits      int    `json:"commits"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	FilesChanged int    `json:"files_changed"`
}

// FocusArea is a named area with commit activity.
type FocusArea struct {
	Path    string `json:"path"`
	Commits int    `json:"commits"`
}

// RecentCommit is a compact preview of a commit.
type RecentCommit struct {
	ID           string `json:"id"`
	SHA          string `json:"sha"`
	Message      string `json:"message"`
	Author       string `json:"author"`
	AuthorAvatar string `json:"author_avatar"`
	Repository   string `json:"repository"`
	Timestamp    string `json:"timestamp"`
	URL          string `json:"url"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
}

// VelocityLabel describes the direction of the commit pulse.
type VelocityLabel string

// Pulse labels.
const (
	LabelFaster VelocityLabel = "faster"
	LabelSlower VelocityLabel = "slower"
	LabelSteady VelocityLabel = "steady"
)

// Pulse holds the development pulse of the period.
type Pulse struct {
	VelocityTrend      float64       `json:"velocity_trend"`
	VelocityLabel      VelocityLabel `json:"velocity_label"`
	TeamStreakDays     int           `json:"team_streak_days"`
	ActiveDaysInPeriod int           `json:"active_days_in_period"`
	PeriodDays         int           `json:"period_days"`
}

// CommitTypeBreakdown is the share of one conventional commit type.
type CommitTypeBreakdown struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CommitQuality holds heuristics derived from commit messages and sizes.
type CommitQuality struct {
	CommitTypes           []CommitTypeBreakdown `json:"commit_types"`
	AvgCommitSizeLOC      int                   `json:"avg_commit_size_loc"`
	AvgFilesPerCommit     float64               `json:"avg_files_per_commit"`
	LargeCommits          int                   `json:"large_commits"`
	ConventionalCommitPct float64               `json:"conventional_commit_pct"`
	TotalAnalyzed         int                   `json:"total_analyzed"`
}

// SummaryResult is the product summary view.
type SummaryResult struct {
	Period            Period             `json:"period"`
	TotalCommits      int                `json:"total_commits"`
	TotalContributors int                `json:"total_contributors"`
	TotalAdditions    int                `json:"total_additions"`
	TotalDeletions    int                `json:"total_deletions"`
	FocusAreas        []FocusArea        `json:"focus_areas"`
	TopContributors   []ContributorStats `json:"top_contributors"`
	DailyActivity     []DailyCount       `json:"daily_activity"`
	RecentCommits     []RecentCommit     `json:"recent_commits"`
	Pulse             Pulse              `json:"pulse"`
	CommitQuality     CommitQuality      `json:"commit_quality"`
}

// EmptySummary returns the canonical empty summary for a period.
func EmptySummary(period Period) SummaryResult {
	return SummaryResult{
		Period:          period,
		FocusAreas:      []FocusArea{},
		TopContributors: []ContributorStats{},
		DailyActivity:   []DailyCount{},
		RecentCommits:   []RecentCommit{},
		Pulse: Pulse{
			VelocityLabel: LabelSteady,
			PeriodDays:    period.Days(),
		},
		CommitQuality: CommitQuality{CommitTypes: []CommitTypeBreakdown{}},
	}
}
