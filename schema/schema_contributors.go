package schema

// ContributorCommit is a compact commit reference on a contributor card.
type ContributorCommit struct {
	SHA        string `json:"sha"`
	Message    string `json:"message"`
	Repository string `json:"repository"`
	Timestamp  string `json:"timestamp"`
	URL        string `json:"url"`
}

// ContributorDetail holds the per-author breakdown of the contributors view.
type ContributorDetail struct {
	Author        string              `json:"author"`
	AvatarURL     string              `json:"avatar_url"`
	Commits       int                 `json:"commits"`
	Additions     int                 `json:"additions"`
	Deletions     int                 `json:"deletions"`
	FilesChanged  int                 `json:"files_changed"`
	LastActive    string              `json:"last_active"`
	FocusAreas    []string            `json:"focus_areas"`
	DailyActivity []DailyCount        `json:"daily_activity"`
	RecentCommits []ContributorCommit `json:"recent_commits"`
}

// ContributorsResult is the contributors view.
type ContributorsResult struct {
	Period       Period              `json:"period"`
	SortedBy     ContributorSort     `json:"sorted_by"`
	Contributors []ContributorDetail `json:"contributors"`
}

// HeatmapRow is one contributor's row of the activity heatmap.
type HeatmapRow struct {
	Author    string       `json:"author"`
	AvatarURL string       `json:"avatar_url"`
	Total     int          `json:"total"`
	Cells     []DailyCount `json:"cells"`
}

// HeatmapResult is the contributor by date grid.
type HeatmapResult struct {
	Period   Period       `json:"period"`
	Dates    []string     `json:"dates"`
	MaxValue int          `json:"max_value"`
	Rows     []HeatmapRow `json:"rows"`
}

// DayOfWeekEntry is the commit count for one weekday.
type DayOfWeekEntry struct {
	Day     string `json:"day"`
	Commits int    `json:"commits"`
}

// DayOfWeekResult is the weekday distribution view.
type DayOfWeekResult struct {
	Period   Period           `json:"period"`
	Timezone string           `json:"timezone"`
	Days     []DayOfWeekEntry `json:"days"`
}

// LeaderboardEntry is one ranked contributor.
type LeaderboardEntry struct {
	Rank                   int          `json:"rank"`
	Author                 string       `json:"author"`
	AvatarURL              string       `json:"avatar_url"`
	Commits                int          `json:"commits"`
	Additions              int          `json:"additions"`
	Deletions              int          `json:"deletions"`
	NetLOC                 int          `json:"net_loc"`
	FilesChanged           int          `json:"files_changed"`
	ReposContributedTo     int          `json:"repos_contributed_to"`
	ActiveDays             int          `json:"active_days"`
	AvgCommitsPerActiveDay float64      `json:"avg_commits_per_active_day"`
	DailyActivity          []DailyCount `json:"daily_activity"`
	PeriodDays             int          `json:"period_days"`
}

// LeaderboardResult is the leaderboard view.
type LeaderboardResult struct {
	Entries           []LeaderboardEntry `json:"entries"`
	TotalContributors int                `json:"total_contributors"`
	Period            Period             `json:"period"`
	RankedBy          RankBy             `json:"ranked_by"`
}
