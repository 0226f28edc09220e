package agg

import (
	"sort"
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// Contributor card limits.
const (
	contributorFocusAreas    = 3
	contributorRecentCommits = 3
)

// weekdays lists day names Monday first.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Contributors builds one detail card per author, ordered by sortBy.
// Unknown orderings fall back to commits.
func Contributors(events []schema.TimelineEvent, period schema.Period, sortBy schema.ContributorSort, now time.Time) schema.ContributorsResult {
	if _, ok := schema.ValidContributorSorts[sortBy]; !ok {
		sortBy = schema.SortByCommits
	}
	result := schema.ContributorsResult{
		Period:       period,
		SortedBy:     sortBy,
		Contributors: []schema.ContributorDetail{},
	}

	order, groups := groupBy(newestFirst(events), byAuthor)
	for _, author := range order {
		authorEvents := groups[author]
		add, del, files := eventTotals(authorEvents)

		detail := schema.ContributorDetail{
			Author:        author,
			AvatarURL:     authorEvents[0].AuthorAvatar,
			Commits:       len(authorEvents),
			Additions:     add,
			Deletions:     del,
			FilesChanged:  files,
			LastActive:    authorEvents[0].Timestamp,
			FocusAreas:    []string{},
			DailyActivity: DailySeries(dailyCounts(authorEvents), period.Days(), now),
			RecentCommits: []schema.ContributorCommit{},
		}
		for _, kc := range topByCount(authorEvents, byRepository, contributorFocusAreas) {
			detail.FocusAreas = append(detail.FocusAreas, kc.key)
		}
		for _, e := range authorEvents[:min(contributorRecentCommits, len(authorEvents))] {
			detail.RecentCommits = append(detail.RecentCommits, schema.ContributorCommit{
				SHA:        schema.ShortSHA(e.SHA),
				Message:    e.Message,
				Repository: e.RepositoryName,
				Timestamp:  e.Timestamp,
				URL:        e.URL,
			})
		}
		result.Contributors = append(result.Contributors, detail)
	}

	cs := result.Contributors
	sort.SliceStable(cs, func(i, j int) bool {
		switch sortBy {
		case schema.SortByAdditions:
			return cs[i].Additions > cs[j].Additions
		case schema.SortByLastActive:
			return cs[i].LastActive > cs[j].LastActive
		default:
			return cs[i].Commits > cs[j].Commits
		}
	})
	return result
}

// Heatmap builds the contributor by date grid over the whole period.
func Heatmap(events []schema.TimelineEvent, period schema.Period, now time.Time) schema.HeatmapResult {
	result := schema.HeatmapResult{
		Period: period,
		Dates:  dateAxis(period.Days(), now),
		Rows:   []schema.HeatmapRow{},
	}

	order, groups := groupBy(newestFirst(events), byAuthor)
	for _, author := range order {
		authorEvents := groups[author]
		cells := DailySeries(dailyCounts(authorEvents), period.Days(), now)
		row := schema.HeatmapRow{
			Author:    author,
			AvatarURL: authorEvents[0].AuthorAvatar,
			Cells:     cells,
		}
		for _, c := range cells {
			row.Total += c.Commits
			result.MaxValue = max(result.MaxValue, c.Commits)
		}
		result.Rows = append(result.Rows, row)
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		return result.Rows[i].Total > result.Rows[j].Total
	})
	return result
}

// DayOfWeek buckets events by weekday in loc, Monday first.
func DayOfWeek(events []schema.TimelineEvent, period schema.Period, loc *time.Location) schema.DayOfWeekResult {
	if loc == nil {
		loc = time.Local
	}
	counts := make(map[time.Weekday]int, len(weekdays))
	for _, e := range events {
		t := e.Time()
		if t.IsZero() {
			continue
		}
		counts[t.In(loc).Weekday()]++
	}

	result := schema.DayOfWeekResult{
		Period:   period,
		Timezone: loc.String(),
		Days:     make([]schema.DayOfWeekEntry, len(weekdays)),
	}
	for i, d := range weekdays {
		result.Days[i] = schema.DayOfWeekEntry{Day: d.String(), Commits: counts[d]}
	}
	return result
}
