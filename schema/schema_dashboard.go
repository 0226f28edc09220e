package schema

import "time"

// ShippedItem is one user-facing change in a product narrative.
type ShippedItem struct {
	Description string          `json:"description"`
	Category    ShippedCategory `json:"category"`
}

// ShippedSummary is what the narrative generator produces for a product.
type ShippedSummary struct {
	Items                 []ShippedItem `json:"items"`
	HasSignificantChanges bool          `json:"has_significant_changes"`
}

// ShippedCommit is the slice of commit data sent to the narrative generator.
type ShippedCommit struct {
	Message    string   `json:"message"`
	Repository string   `json:"repository"`
	Files      []string `json:"files,omitempty"`
}

// ShippedInput is the narrative generator request for one product.
type ShippedInput struct {
	ProductName string          `json:"product_name"`
	Period      Period          `json:"period"`
	Commits     []ShippedCommit `json:"commits"`
}

// NarrativeRecord is a cached narrative keyed by (product, period).
type NarrativeRecord struct {
	ProductID             string        `json:"product_id"`
	Period                Period        `json:"period"`
	Items                 []ShippedItem `json:"items"`
	HasSignificantChanges bool          `json:"has_significant_changes"`
	TotalCommits          int           `json:"total_commits"`
	TotalAdditions        int           `json:"total_additions"`
	TotalDeletions        int           `json:"total_deletions"`
	LastActivityAt        *time.Time    `json:"last_activity_at,omitempty"`
	GeneratedAt           time.Time     `json:"generated_at"`
}

// ProductShippedSummary is a product card of the dashboard.
type ProductShippedSummary struct {
	ProductID             string        `json:"product_id"`
	ProductName           string        `json:"product_name"`
	ProductColor          string        `json:"product_color,omitempty"`
	Items                 []ShippedItem `json:"items"`
	HasSignificantChanges bool          `json:"has_significant_changes"`
	TotalCommits          int           `json:"total_commits"`
	TotalAdditions        int           `json:"total_additions"`
	TotalDeletions        int           `json:"total_deletions"`
	GeneratedAt           *time.Time    `json:"generated_at,omitempty"`
	LastActivityAt        *time.Time    `json:"last_activity_at,omitempty"`
}

// DashboardResult is the cross-product dashboard view.
type DashboardResult struct {
	Period            Period                  `json:"period"`
	TotalCommits      int                     `json:"total_commits"`
	TotalAdditions    int                     `json:"total_additions"`
	TotalDeletions    int                     `json:"total_deletions"`
	TotalContributors int                     `json:"total_contributors"`
	ActiveProducts    int                     `json:"active_products"`
	DailyActivity     []DailyCount            `json:"daily_activity"`
	Products          []ProductShippedSummary `json:"products"`
	GeneratedAt       *time.Time              `json:"generated_at,omitempty"`
	IsGenerating      bool                    `json:"is_generating"`
}

// EmptyDashboard returns the canonical empty dashboard.
func EmptyDashboard(period Period) DashboardResult {
	return DashboardResult{
		Period:        period,
		DailyActivity: []DailyCount{},
		Products:      []ProductShippedSummary{},
	}
}
