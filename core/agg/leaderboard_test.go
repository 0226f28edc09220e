package agg

import (
	"sort"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardRanksArePermutation(t *testing.T) {
	events := contributorFixture()
	for rankBy := range schema.ValidRankBy {
		t.Run(string(rankBy), func(t *testing.T) {
			result := Leaderboard(events, schema.Period7d, rankBy, testNow)
			assert.Equal(t, rankBy, result.RankedBy)
			assert.Equal(t, 3, result.TotalContributors)

			ranks := make([]int, 0, len(result.Entries))
			metric := leaderboardMetric(rankBy)
			for i, e := range result.Entries {
				ranks = append(ranks, e.Rank)
				if i > 0 {
					assert.GreaterOrEqual(t, metric(result.Entries[i-1]), metric(e))
				}
			}
			sort.Ints(ranks)
			assert.Equal(t, []int{1, 2, 3}, ranks)
		})
	}
}

func TestLeaderboardMetrics(t *testing.T) {
	events := contributorFixture()

	tests := []struct {
		rankBy schema.RankBy
		first  string
	}{
		{schema.RankByCommits, "alice"},
		{schema.RankByAdditions, "bob"},
		{schema.RankByActiveDays, "alice"},
		{schema.RankByFilesChanged, "alice"},
		{"lines", "alice"},
	}
	for _, tt := range tests {
		t.Run(string(tt.rankBy), func(t *testing.T) {
			result := Leaderboard(events, schema.Period7d, tt.rankBy, testNow)
			require.NotEmpty(t, result.Entries)
			assert.Equal(t, tt.first, result.Entries[0].Author)
			assert.Equal(t, 1, result.Entries[0].Rank)
		})
	}

	invalid := Leaderboard(events, schema.Period7d, "lines", testNow)
	assert.Equal(t, schema.RankByCommits, invalid.RankedBy)
}

func TestLeaderboardEntry(t *testing.T) {
	result := Leaderboard(contributorFixture(), schema.Period7d, schema.RankByCommits, testNow)
	require.Len(t, result.Entries, 3)

	carol := result.Entries[1]
	assert.Equal(t, "carol", carol.Author)
	assert.Equal(t, 2, carol.Commits)
	assert.Equal(t, 6, carol.Additions)
	assert.Equal(t, 2, carol.Deletions)
	assert.Equal(t, 4, carol.NetLOC)
	assert.Equal(t, 1, carol.ReposContributedTo)
	assert.Equal(t, 1, carol.ActiveDays)
	assert.Equal(t, 2.0, carol.AvgCommitsPerActiveDay)
	assert.Equal(t, 7, carol.PeriodDays)
	assert.Len(t, carol.DailyActivity, 7)

	alice := result.Entries[0]
	assert.Equal(t, 4, alice.ReposContributedTo)
	assert.Equal(t, 5, alice.ActiveDays)
	assert.Equal(t, 1.0, alice.AvgCommitsPerActiveDay)
}

func TestLeaderboardTiesKeepFirstSeen(t *testing.T) {
	events := []schema.TimelineEvent{
		commitAt("x", "xavier", "api", testNow.Add(-time.Hour), 1, 0),
		commitAt("y", "yara", "api", testNow.Add(-2*time.Hour), 1, 0),
	}
	result := Leaderboard(events, schema.Period7d, schema.RankByCommits, testNow)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "xavier", result.Entries[0].Author)
	assert.Equal(t, 2, result.Entries[1].Rank)
}

func TestLeaderboardEmpty(t *testing.T) {
	result := Leaderboard(nil, schema.Period7d, schema.RankByAdditions, testNow)
	assert.NotNil(t, result.Entries)
	assert.Empty(t, result.Entries)
	assert.Equal(t, 0, result.TotalContributors)
}
