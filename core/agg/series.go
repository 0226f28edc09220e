// Package agg turns enriched commit events into the analytics views.
// Every function here is pure: the clock is passed in and no I/O happens.
package agg

import (
	"math"
	"sort"
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// dateAxis returns the last days calendar dates ending at now (UTC), oldest first.
func dateAxis(days int, now time.Time) []string {
	if days <= 0 {
		return []string{}
	}
	today := now.UTC()
	dates := make([]string, days)
	for i := range days {
		dates[i] = today.AddDate(0, 0, i-days+1).Format(schema.DateFormat)
	}
	return dates
}

// DailySeries zero-fills counts over the last days calendar days ending at now.
// Counts for dates outside the window are ignored.
func DailySeries(counts map[string]int, days int, now time.Time) []schema.DailyCount {
	axis := dateAxis(days, now)
	series := make([]schema.DailyCount, len(axis))
	for i, date := range axis {
		series[i] = schema.DailyCount{Date: date, Commits: counts[date]}
	}
	return series
}

// dailyCounts counts events per calendar date.
func dailyCounts(events []schema.TimelineEvent) map[string]int {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Date()]++
	}
	return counts
}

// newestFirst returns a copy of events ordered by timestamp descending.
func newestFirst(events []schema.TimelineEvent) []schema.TimelineEvent {
	sorted := make([]schema.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}

// oldestFirst returns a copy of events ordered by timestamp ascending.
func oldestFirst(events []schema.TimelineEvent) []schema.TimelineEvent {
	sorted := make([]schema.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

// groupBy buckets events by key, remembering the order keys were first seen.
func groupBy(events []schema.TimelineEvent, key func(schema.TimelineEvent) string) ([]string, map[string][]schema.TimelineEvent) {
	var order []string
	groups := make(map[string][]schema.TimelineEvent)
	for _, e := range events {
		k := key(e)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], e)
	}
	return order, groups
}

func byAuthor(e schema.TimelineEvent) string { return e.Author }

func byRepository(e schema.TimelineEvent) string { return e.RepositoryName }

// keyCount is a named count used for top-N rankings.
type keyCount struct {
	key   string
	count int
}

// topByCount counts events per key and returns the n most frequent keys.
// Equal counts keep first-seen order. A negative n returns every key.
func topByCount(events []schema.TimelineEvent, key func(schema.TimelineEvent) string, n int) []keyCount {
	order, groups := groupBy(events, key)
	ranked := make([]keyCount, len(order))
	for i, k := range order {
		ranked[i] = keyCount{key: k, count: len(groups[k])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// eventTotals sums the change counts of events. Unenriched events count as zero.
func eventTotals(events []schema.TimelineEvent) (additions, deletions, files int) {
	for _, e := range events {
		additions += e.Additions()
		deletions += e.Deletions()
		files += e.FilesChanged()
	}
	return additions, deletions, files
}

// distinct counts the distinct values of key across events.
func distinct(events []schema.TimelineEvent, key func(schema.TimelineEvent) string) int {
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		seen[key(e)] = struct{}{}
	}
	return len(seen)
}

func byDate(e schema.TimelineEvent) string { return e.Date() }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
