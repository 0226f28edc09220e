package agg

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// burst returns n commits at the same instant.
func burst(prefix, author, repo string, ts time.Time, n, additions, deletions int) []schema.TimelineEvent {
	events := make([]schema.TimelineEvent, n)
	for i := range n {
		events[i] = commitAt(fmt.Sprintf("%s-%d", prefix, i), author, repo, ts, additions, deletions)
	}
	return events
}

func velocityFixture() []schema.TimelineEvent {
	var events []schema.TimelineEvent
	events = append(events, burst("fri", "alice", "api", time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC), 7, 3, 1)...)
	events = append(events, burst("wed", "alice", "web", time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC), 7, 3, 1)...)
	events = append(events, burst("old", "bob", "api", time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC), 7, 1, 1)...)
	return events
}

func TestVelocity(t *testing.T) {
	result := Velocity(velocityFixture(), schema.Period7d, testNow)

	require.Len(t, result.CommitData, 7)
	require.Len(t, result.LOCData, 7)
	require.Len(t, result.ContributorsData, 7)
	assert.Equal(t, "2025-03-08", result.CommitData[0].Date)
	assert.Equal(t, schema.VelocityDataPoint{Date: "2025-03-14", Commits: 7, Additions: 21, Deletions: 7, Contributors: 1}, result.CommitData[6])
	assert.Equal(t, schema.LOCDataPoint{Date: "2025-03-12", Additions: 21, Deletions: 7}, result.LOCData[4])

	assert.Equal(t, schema.VelocityTotals{Commits: 14, Additions: 42, Deletions: 14, Contributors: 1, FilesChanged: 14}, result.CurrentTotals)
	assert.Equal(t, schema.VelocityTotals{Commits: 7, Additions: 7, Deletions: 7, Contributors: 1, FilesChanged: 7}, result.PreviousTotals)

	assert.Equal(t, []schema.VelocityInsight{
		{Type: schema.InsightTrend, Message: "Velocity is up 100% compared to previous 7d", Value: "+100%"},
		{Type: schema.InsightPeak, Message: "Peak activity: 7 commits on Mar 12", Value: "7"},
		{Type: schema.InsightPattern, Message: "Busiest day: Wednesday (avg 7.0 commits)", Value: "Wednesday"},
		{Type: schema.InsightFocus, Message: "Net code growth: +28 lines (75% additions)", Value: "+28"},
		{Type: schema.InsightPattern, Message: "Average: 2.0 commits/day (7.0 on active days)", Value: "2.0"},
	}, result.Insights)

	require.Len(t, result.RepoComparison, 2)
	web := result.RepoComparison[0]
	assert.Equal(t, "web", web.RepositoryName)
	assert.Equal(t, "acme/web", web.RepositoryFullName)
	assert.Equal(t, 7, web.Commits)
	assert.Equal(t, 14, web.NetLOC)
	assert.Equal(t, 1, web.BusFactor)
	assert.Equal(t, 0.33, web.ChurnRatio)
	assert.Equal(t, 1, web.ActiveDays)
	assert.Equal(t, schema.CadenceInactive, web.Cadence)
	assert.Equal(t, "api", result.RepoComparison[1].RepositoryName)
}

func TestVelocityEmpty(t *testing.T) {
	assert.Equal(t, schema.EmptyVelocity(schema.Period14d), Velocity(nil, schema.Period14d, testNow))
}

func TestVelocityTrendInsight(t *testing.T) {
	day := time.Date(2025, 3, 13, 10, 0, 0, 0, time.UTC)
	before := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		current  int
		previous int
		message  string
	}{
		{"no previous commits", 5, 0, ""},
		{"below threshold", 20, 20, ""},
		{"just under five percent", 104, 100, ""},
		{"at five percent", 105, 100, "Velocity is up 5% compared to previous 7d"},
		{"down", 5, 10, "Velocity is down 50% compared to previous 7d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := burst("cur", "alice", "api", day, tt.current, 1, 0)
			events = append(events, burst("prev", "alice", "api", before, tt.previous, 1, 0)...)

			result := Velocity(events, schema.Period7d, testNow)
			var trend []schema.VelocityInsight
			for _, in := range result.Insights {
				if in.Type == schema.InsightTrend {
					trend = append(trend, in)
				}
			}
			if tt.message == "" {
				assert.Empty(t, trend)
				return
			}
			require.Len(t, trend, 1)
			assert.Equal(t, tt.message, trend[0].Message)
		})
	}
}

func TestVelocityNetReduction(t *testing.T) {
	events := []schema.TimelineEvent{commitAt("a", "alice", "api", testNow.Add(-time.Hour), 500, 2000)}
	result := Velocity(events, schema.Period7d, testNow)

	var focus []schema.VelocityInsight
	for _, in := range result.Insights {
		if in.Type == schema.InsightFocus {
			focus = append(focus, in)
		}
	}
	require.Len(t, focus, 1)
	assert.Equal(t, "Net code reduction: -1,500 lines (20% additions)", focus[0].Message)
	assert.Equal(t, "-1,500", focus[0].Value)
	assert.Equal(t, 4.0, result.RepoComparison[0].ChurnRatio)
}

func TestVelocityShortPeriodSkipsWeekday(t *testing.T) {
	events := burst("x", "alice", "api", testNow.Add(-time.Hour), 3, 1, 0)
	result := Velocity(events, schema.Period48h, testNow)
	require.Len(t, result.CommitData, 2)
	for _, in := range result.Insights {
		assert.NotContains(t, in.Message, "Busiest day")
	}
}

func TestCadenceFor(t *testing.T) {
	assert.Equal(t, schema.CadenceDaily, cadenceFor(5, 7))
	assert.Equal(t, schema.CadenceSporadic, cadenceFor(3, 7))
	assert.Equal(t, schema.CadenceInactive, cadenceFor(2, 7))
	assert.Equal(t, schema.CadenceDaily, cadenceFor(1, 1))
	assert.Equal(t, schema.CadenceInactive, cadenceFor(1, 0))
}
