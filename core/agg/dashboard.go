package agg

import (
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// ProductActivity is the enriched period activity of one product.
type ProductActivity struct {
	Product schema.Product
	Events  []schema.TimelineEvent
}

// DashboardRollup aggregates activity across products. Product cards are left
// empty for the caller to fill from cached or generated narratives.
func DashboardRollup(activity []ProductActivity, period schema.Period, now time.Time) schema.DashboardResult {
	result := schema.EmptyDashboard(period)
	contributors := make(map[string]struct{})
	counts := make(map[string]int)

	for _, pa := range activity {
		if len(pa.Events) > 0 {
			result.ActiveProducts++
		}
		for _, e := range pa.Events {
			result.TotalCommits++
			result.TotalAdditions += e.Additions()
			result.TotalDeletions += e.Deletions()
			contributors[e.Author] = struct{}{}
			counts[e.Date()]++
		}
	}
	result.TotalContributors = len(contributors)
	result.DailyActivity = DailySeries(counts, period.Days(), now)
	return result
}

// ShippedInput prepares the narrative request of a product, newest commit first.
func ShippedInput(productName string, period schema.Period, events []schema.TimelineEvent) schema.ShippedInput {
	if productName == "" {
		productName = UnnamedProduct
	}
	input := schema.ShippedInput{
		ProductName: productName,
		Period:      period,
		Commits:     make([]schema.ShippedCommit, 0, len(events)),
	}
	for _, e := range newestFirst(events) {
		input.Commits = append(input.Commits, schema.ShippedCommit{
			Message:    e.Message,
			Repository: e.RepositoryName,
		})
	}
	return input
}

// UnnamedProduct is shown for products without a name.
const UnnamedProduct = "Unnamed"

// LastActivity returns the time of the newest event, or nil without events.
func LastActivity(events []schema.TimelineEvent) *time.Time {
	var newest time.Time
	for _, e := range events {
		if t := e.Time(); t.After(newest) {
			newest = t
		}
	}
	if newest.IsZero() {
		return nil
	}
	return &newest
}

// EventTotals returns commits, additions and deletions of events.
func EventTotals(events []schema.TimelineEvent) (commits, additions, deletions int) {
	additions, deletions, _ = eventTotals(events)
	return len(events), additions, deletions
}
