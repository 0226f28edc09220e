package agg

import (
	"math"
	"regexp"
	"sort"
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// Summary view limits.
const (
	summaryTopContributors = 5
	summaryFocusAreas      = 5
	summaryRecentCommits   = 5
)

// pulseThreshold is the trend percentage beyond which the pulse is not steady.
const pulseThreshold = 10

// largeCommitLOC is the line count above which a commit is considered large.
const largeCommitLOC = 500

// OtherCommitType is the type of messages that follow no conventional prefix.
const OtherCommitType = "Other"

var commitTypePatterns = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Features", regexp.MustCompile(`(?i)^feat(\(.*?\))?[!:]`)},
	{"Fixes", regexp.MustCompile(`(?i)^fix(\(.*?\))?[!:]`)},
	{"Refactors", regexp.MustCompile(`(?i)^refactor(\(.*?\))?[!:]`)},
	{"Docs", regexp.MustCompile(`(?i)^docs(\(.*?\))?[!:]`)},
	{"Tests", regexp.MustCompile(`(?i)^test(\(.*?\))?[!:]`)},
	{"Chores", regexp.MustCompile(`(?i)^(chore|ci|build|style|perf)(\(.*?\))?[!:]`)},
}

// ClassifyCommit returns the conventional commit type of a message and whether it matched any.
func ClassifyCommit(message string) (string, bool) {
	for _, t := range commitTypePatterns {
		if t.pattern.MatchString(message) {
			return t.name, true
		}
	}
	return OtherCommitType, false
}

// Summary computes the product summary. previous holds the events of the
// extended window; the ones also present in events are ignored.
func Summary(events, previous []schema.TimelineEvent, period schema.Period, now time.Time) schema.SummaryResult {
	if len(events) == 0 {
		return schema.EmptySummary(period)
	}
	sorted := newestFirst(events)

	result := schema.EmptySummary(period)
	result.TotalCommits = len(sorted)
	result.TotalAdditions, result.TotalDeletions, _ = eventTotals(sorted)

	// Contributors in first-seen order, newest commit first
	order, groups := groupBy(sorted, byAuthor)
	result.TotalContributors = len(order)
	contributors := make([]schema.ContributorStats, 0, len(order))
	for _, author := range order {
		authorEvents := groups[author]
		add, del, files := eventTotals(authorEvents)
		contributors = append(contributors, schema.ContributorStats{
			Author:       author,
			AvatarURL:    authorEvents[0].AuthorAvatar,
			Commits:      len(authorEvents),
			Additions:    add,
			Deletions:    del,
			FilesChanged: files,
		})
	}
	sort.SliceStable(contributors, func(i, j int) bool {
		return contributors[i].Commits > contributors[j].Commits
	})
	if len(contributors) > summaryTopContributors {
		contributors = contributors[:summaryTopContributors]
	}
	result.TopContributors = contributors

	// Repository names stand in for focus areas
	for _, kc := range topByCount(sorted, byRepository, summaryFocusAreas) {
		result.FocusAreas = append(result.FocusAreas, schema.FocusArea{Path: kc.key, Commits: kc.count})
	}

	result.DailyActivity = DailySeries(dailyCounts(sorted), period.Days(), now)

	for _, e := range sorted[:min(summaryRecentCommits, len(sorted))] {
		result.RecentCommits = append(result.RecentCommits, schema.RecentCommit{
			ID:           e.ID,
			SHA:          schema.ShortSHA(e.SHA),
			Message:      e.Message,
			Author:       e.Author,
			AuthorAvatar: e.AuthorAvatar,
			Repository:   e.RepositoryName,
			Timestamp:    e.Timestamp,
			URL:          e.URL,
			Additions:    e.Additions(),
			Deletions:    e.Deletions(),
		})
	}

	result.Pulse = computePulse(sorted, previous, result.DailyActivity, period)
	result.CommitQuality = computeCommitQuality(sorted)
	return result
}

// computePulse compares the current window with the one right before it.
func computePulse(current, previous []schema.TimelineEvent, daily []schema.DailyCount, period schema.Period) schema.Pulse {
	currentIDs := make(map[string]struct{}, len(current))
	for _, e := range current {
		currentIDs[e.ID] = struct{}{}
	}
	prevCount := 0
	for _, e := range previous {
		if _, ok := currentIDs[e.ID]; !ok {
			prevCount++
		}
	}

	pulse := schema.Pulse{PeriodDays: period.Days()}
	switch {
	case prevCount == 0 && len(current) == 0:
		pulse.VelocityTrend = 0
	case prevCount == 0:
		pulse.VelocityTrend = 100
	default:
		pulse.VelocityTrend = round1(float64(len(current)-prevCount) / float64(prevCount) * 100)
	}

	switch {
	case pulse.VelocityTrend > pulseThreshold:
		pulse.VelocityLabel = schema.LabelFaster
	case pulse.VelocityTrend < -pulseThreshold:
		pulse.VelocityLabel = schema.LabelSlower
	default:
		pulse.VelocityLabel = schema.LabelSteady
	}

	// Streak walks back from the newest day
	for i := len(daily) - 1; i >= 0 && daily[i].Commits > 0; i-- {
		pulse.TeamStreakDays++
	}
	for _, d := range daily {
		if d.Commits > 0 {
			pulse.ActiveDaysInPeriod++
		}
	}
	return pulse
}

// computeCommitQuality derives message and size heuristics.
func computeCommitQuality(events []schema.TimelineEvent) schema.CommitQuality {
	quality := schema.CommitQuality{CommitTypes: []schema.CommitTypeBreakdown{}}
	total := len(events)
	if total == 0 {
		return quality
	}

	var typeOrder []string
	typeCounts := make(map[string]int)
	conventional, totalLOC, totalFiles := 0, 0, 0
	for _, e := range events {
		commitType, ok := ClassifyCommit(e.Message)
		if _, seen := typeCounts[commitType]; !seen {
			typeOrder = append(typeOrder, commitType)
		}
		typeCounts[commitType]++
		if ok {
			conventional++
		}

		loc := e.Additions() + e.Deletions()
		totalLOC += loc
		totalFiles += e.FilesChanged()
		if loc > largeCommitLOC {
			quality.LargeCommits++
		}
	}

	for _, t := range typeOrder {
		quality.CommitTypes = append(quality.CommitTypes, schema.CommitTypeBreakdown{
			Type:       t,
			Count:      typeCounts[t],
			Percentage: round1(float64(typeCounts[t]) / float64(total) * 100),
		})
	}
	sort.SliceStable(quality.CommitTypes, func(i, j int) bool {
		return quality.CommitTypes[i].Count > quality.CommitTypes[j].Count
	})

	quality.AvgCommitSizeLOC = int(math.Round(float64(totalLOC) / float64(total)))
	quality.AvgFilesPerCommit = round1(float64(totalFiles) / float64(total))
	quality.ConventionalCommitPct = round1(float64(conventional) / float64(total) * 100)
	quality.TotalAnalyzed = total
	return quality
}
