package agg

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/commitpulse/schema"
)

// Velocity insight rules.
const (
	trendMinChangePct  = 5
	patternMinDays     = 7
	patternMinAverage  = 1
	cadenceDailyRatio  = 0.7
	cadenceSporadicMin = 0.3
)

// Velocity computes the velocity view. events must cover the extended window
// of period; they are split into current and previous at the period start.
func Velocity(events []schema.TimelineEvent, period schema.Period, now time.Time) schema.VelocityResult {
	if len(events) == 0 {
		return schema.EmptyVelocity(period)
	}
	result := schema.EmptyVelocity(period)

	periodStart := schema.FormatTimestamp(period.Start(now))
	var current, previous []schema.TimelineEvent
	for _, e := range oldestFirst(events) {
		if e.Timestamp >= periodStart {
			current = append(current, e)
		} else {
			previous = append(previous, e)
		}
	}

	result.CommitData = dailyVelocity(current, period.Days(), now)
	for _, dp := range result.CommitData {
		result.LOCData = append(result.LOCData, schema.LOCDataPoint{Date: dp.Date, Additions: dp.Additions, Deletions: dp.Deletions})
		result.ContributorsData = append(result.ContributorsData, schema.ContributorsDataPoint{Date: dp.Date, Contributors: dp.Contributors})
	}

	result.CurrentTotals = periodTotals(current)
	result.PreviousTotals = periodTotals(previous)
	result.Insights = velocityInsights(result.CommitData, result.CurrentTotals, result.PreviousTotals, period)
	result.RepoComparison = repoComparison(current, period)
	return result
}

// dailyVelocity zero-fills per-day commits, line changes and distinct authors.
func dailyVelocity(events []schema.TimelineEvent, days int, now time.Time) []schema.VelocityDataPoint {
	axis := dateAxis(days, now)
	index := make(map[string]int, len(axis))
	points := make([]schema.VelocityDataPoint, len(axis))
	authors := make([]map[string]struct{}, len(axis))
	for i, date := range axis {
		index[date] = i
		points[i].Date = date
		authors[i] = make(map[string]struct{})
	}

	for _, e := range events {
		i, ok := index[e.Date()]
		if !ok {
			continue
		}
		points[i].Commits++
		points[i].Additions += e.Additions()
		points[i].Deletions += e.Deletions()
		authors[i][e.Author] = struct{}{}
	}
	for i := range points {
		points[i].Contributors = len(authors[i])
	}
	return points
}

func periodTotals(events []schema.TimelineEvent) schema.VelocityTotals {
	add, del, files := eventTotals(events)
	return schema.VelocityTotals{
		Commits:      len(events),
		Additions:    add,
		Deletions:    del,
		Contributors: distinct(events, byAuthor),
		FilesChanged: files,
	}
}

// velocityInsights applies the rule-based observations in a fixed order:
// trend, peak day, busiest weekday, net code and average.
func velocityInsights(data []schema.VelocityDataPoint, current, previous schema.VelocityTotals, period schema.Period) []schema.VelocityInsight {
	insights := []schema.VelocityInsight{}

	if previous.Commits > 0 {
		change := float64(current.Commits-previous.Commits) / float64(previous.Commits) * 100
		if math.Abs(change) >= trendMinChangePct {
			direction := "up"
			if change < 0 {
				direction = "down"
			}
			insights = append(insights, schema.VelocityInsight{
				Type:    schema.InsightTrend,
				Message: fmt.Sprintf("Velocity is %s %.0f%% compared to previous %s", direction, math.Abs(change), period),
				Value:   fmt.Sprintf("%+.0f%%", change),
			})
		}
	}

	if len(data) > 0 {
		peak := data[0]
		for _, dp := range data[1:] {
			if dp.Commits > peak.Commits {
				peak = dp
			}
		}
		if peak.Commits > 0 {
			label := peak.Date
			if d, err := time.Parse(schema.DateFormat, peak.Date); err == nil {
				label = d.Format("Jan 02")
			}
			insights = append(insights, schema.VelocityInsight{
				Type:    schema.InsightPeak,
				Message: fmt.Sprintf("Peak activity: %d commits on %s", peak.Commits, label),
				Value:   fmt.Sprint(peak.Commits),
			})
		}
	}

	if insight, ok := busiestWeekday(data); ok {
		insights = append(insights, insight)
	}

	net := current.Additions - current.Deletions
	if total := current.Additions + current.Deletions; total > 0 {
		direction := "growth"
		if net < 0 {
			direction = "reduction"
		}
		value := signedComma(net)
		insights = append(insights, schema.VelocityInsight{
			Type:    schema.InsightFocus,
			Message: fmt.Sprintf("Net code %s: %s lines (%.0f%% additions)", direction, value, float64(current.Additions)/float64(total)*100),
			Value:   value,
		})
	}

	if len(data) > 0 {
		activeDays, commits := 0, 0
		for _, dp := range data {
			commits += dp.Commits
			if dp.Commits > 0 {
				activeDays++
			}
		}
		if activeDays > 0 {
			overall := float64(commits) / float64(len(data))
			perActive := float64(commits) / float64(activeDays)
			insights = append(insights, schema.VelocityInsight{
				Type:    schema.InsightPattern,
				Message: fmt.Sprintf("Average: %.1f commits/day (%.1f on active days)", overall, perActive),
				Value:   fmt.Sprintf("%.1f", overall),
			})
		}
	}
	return insights
}

// busiestWeekday finds the weekday with the highest average commits.
// Ties go to the weekday seen first in the series.
func busiestWeekday(data []schema.VelocityDataPoint) (schema.VelocityInsight, bool) {
	if len(data) < patternMinDays {
		return schema.VelocityInsight{}, false
	}

	var order []time.Weekday
	totals := make(map[time.Weekday]int)
	counts := make(map[time.Weekday]int)
	for _, dp := range data {
		d, err := time.Parse(schema.DateFormat, dp.Date)
		if err != nil {
			continue
		}
		wd := d.Weekday()
		if _, ok := counts[wd]; !ok {
			order = append(order, wd)
		}
		totals[wd] += dp.Commits
		counts[wd]++
	}
	if len(order) == 0 {
		return schema.VelocityInsight{}, false
	}

	best := order[0]
	bestAvg := float64(totals[best]) / float64(counts[best])
	for _, wd := range order[1:] {
		if avg := float64(totals[wd]) / float64(counts[wd]); avg > bestAvg {
			best, bestAvg = wd, avg
		}
	}
	if bestAvg < patternMinAverage {
		return schema.VelocityInsight{}, false
	}
	return schema.VelocityInsight{
		Type:    schema.InsightPattern,
		Message: fmt.Sprintf("Busiest day: %s (avg %.1f commits)", best, bestAvg),
		Value:   best.String(),
	}, true
}

// signedComma formats n with thousands separators and an explicit sign.
func signedComma(n int) string {
	if n >= 0 {
		return "+" + humanize.Comma(int64(n))
	}
	return humanize.Comma(int64(n))
}

// repoComparison summarizes each repository of the current window, busiest first.
func repoComparison(events []schema.TimelineEvent, period schema.Period) []schema.RepoComparison {
	periodDays := period.Days()
	order, groups := groupBy(events, byRepository)

	results := make([]schema.RepoComparison, 0, len(order))
	for _, name := range order {
		repoEvents := groups[name]
		add, del, _ := eventTotals(repoEvents)
		contributors := distinct(repoEvents, byAuthor)
		activeDays := distinct(repoEvents, byDate)

		rc := schema.RepoComparison{
			RepositoryName:     name,
			RepositoryFullName: repoEvents[0].RepositoryFullName,
			Commits:            len(repoEvents),
			Additions:          add,
			Deletions:          del,
			NetLOC:             add - del,
			Contributors:       contributors,
			BusFactor:          contributors,
			Cadence:            cadenceFor(activeDays, periodDays),
			ActiveDays:         activeDays,
		}
		if rc.RepositoryFullName == "" {
			rc.RepositoryFullName = name
		}
		if add > 0 {
			rc.ChurnRatio = round2(float64(del) / float64(add))
		}
		results = append(results, rc)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Commits > results[j].Commits
	})
	return results
}

// cadenceFor classifies the share of active days in the period.
func cadenceFor(activeDays, periodDays int) schema.Cadence {
	if periodDays <= 0 {
		return schema.CadenceInactive
	}
	ratio := float64(activeDays) / float64(periodDays)
	switch {
	case ratio >= cadenceDailyRatio:
		return schema.CadenceDaily
	case ratio >= cadenceSporadicMin:
		return schema.CadenceSporadic
	default:
		return schema.CadenceInactive
	}
}
