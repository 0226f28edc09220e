package agg

import (
	"sort"
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// Leaderboard ranks authors by rankBy. Unknown metrics fall back to commits.
// Ranks are 1..N with no gaps; equal values keep first-seen order.
func Leaderboard(events []schema.TimelineEvent, period schema.Period, rankBy schema.RankBy, now time.Time) schema.LeaderboardResult {
	if _, ok := schema.ValidRankBy[rankBy]; !ok {
		rankBy = schema.RankByCommits
	}
	result := schema.LeaderboardResult{
		Entries:  []schema.LeaderboardEntry{},
		Period:   period,
		RankedBy: rankBy,
	}

	order, groups := groupBy(newestFirst(events), byAuthor)
	for _, author := range order {
		authorEvents := groups[author]
		add, del, files := eventTotals(authorEvents)
		activeDays := distinct(authorEvents, byDate)

		entry := schema.LeaderboardEntry{
			Author:             author,
			AvatarURL:          authorEvents[0].AuthorAvatar,
			Commits:            len(authorEvents),
			Additions:          add,
			Deletions:          del,
			NetLOC:             add - del,
			FilesChanged:       files,
			ReposContributedTo: distinct(authorEvents, byRepository),
			ActiveDays:         activeDays,
			DailyActivity:      DailySeries(dailyCounts(authorEvents), period.Days(), now),
			PeriodDays:         period.Days(),
		}
		if activeDays > 0 {
			entry.AvgCommitsPerActiveDay = round1(float64(entry.Commits) / float64(activeDays))
		}
		result.Entries = append(result.Entries, entry)
	}

	metric := leaderboardMetric(rankBy)
	es := result.Entries
	sort.SliceStable(es, func(i, j int) bool {
		return metric(es[i]) > metric(es[j])
	})
	for i := range es {
		es[i].Rank = i + 1
	}
	result.TotalContributors = len(es)
	return result
}

// leaderboardMetric returns the value an entry is ranked on.
func leaderboardMetric(rankBy schema.RankBy) func(schema.LeaderboardEntry) int {
	switch rankBy {
	case schema.RankByAdditions:
		return func(e schema.LeaderboardEntry) int { return e.Additions }
	case schema.RankByActiveDays:
		return func(e schema.LeaderboardEntry) int { return e.ActiveDays }
	case schema.RankByFilesChanged:
		return func(e schema.LeaderboardEntry) int { return e.FilesChanged }
	default:
		return func(e schema.LeaderboardEntry) int { return e.Commits }
	}
}
