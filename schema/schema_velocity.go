package schema

// VelocityDataPoint is one day of the velocity series.
type VelocityDataPoint struct {
	Date         string `json:"date"`
	Commits      int    `json:"commits"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	Contributors int    `json:"contributors"`
}

// LOCDataPoint is one day of the line-change series.
type LOCDataPoint struct {
	Date      string `json:"date"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// ContributorsDataPoint is one day of the distinct-contributor series.
type ContributorsDataPoint struct {
	Date         string `json:"date"`
	Contributors int    `json:"contributors"`
}

// VelocityTotals holds the aggregate counts of one window.
type VelocityTotals struct {
	Commits      int `json:"commits"`
	Additions    int `json:"additions"`
	Deletions    int `json:"deletions"`
	Contributors int `json:"contributors"`
	FilesChanged int `json:"files_changed"`
}

// VelocityInsight is a generated observation about velocity.
type VelocityInsight struct {
	Type    InsightKind `json:"type"`
	Message string      `json:"message"`
	Value   string      `json:"value,omitempty"`
}

// RepoComparison holds per-repository stats of the current window.
type RepoComparison struct {
	RepositoryName     string  `json:"repository_name"`
	RepositoryFullName string  `json:"repository_full_name"`
	Commits            int     `json:"commits"`
	Additions          int     `json:"additions"`
	Deletions          int     `json:"deletions"`
	NetLOC             int     `json:"net_loc"`
	Contributors       int     `json:"contributors"`
	BusFactor          int     `json:"bus_factor"`
	ChurnRatio         float64 `json:"churn_ratio"`
	Cadence            Cadence `json:"cadence"`
	ActiveDays         int     `json:"active_days"`
}

// VelocityResult is the velocity view.
type VelocityResult struct {
	Period           Period                  `json:"period"`
	CommitData       []VelocityDataPoint     `json:"commit_data"`
	LOCData          []LOCDataPoint          `json:"loc_data"`
	ContributorsData []ContributorsDataPoint `json:"contributors_data"`
	CurrentTotals    VelocityTotals          `json:"current_totals"`
	PreviousTotals   VelocityTotals          `json:"previous_totals"`
	Insights         []VelocityInsight       `json:"insights"`
	RepoComparison   []RepoComparison        `json:"repo_comparison"`
}

// EmptyVelocity returns the canonical empty velocity view.
func EmptyVelocity(period Period) VelocityResult {
	return VelocityResult{
		Period:           period,
		CommitData:       []VelocityDataPoint{},
		LOCData:          []LOCDataPoint{},
		ContributorsData: []ContributorsDataPoint{},
		Insights:         []VelocityInsight{},
		RepoComparison:   []RepoComparison{},
	}
}
