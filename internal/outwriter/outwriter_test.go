package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		reserved int
		expected int
	}{
		{"wide terminal is capped", 200, 30, 70},
		{"narrow terminal keeps a minimum", 80, 50, 15},
		{"in between", 120, 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetMaxTablePathWidth(&contract.Config{Width: tt.width}, tt.reserved))
		})
	}
}

func TestFormattingHelpers(t *testing.T) {
	assert.Equal(t, "+1,234", signed(1234))
	assert.Equal(t, "-56", signed(-56))
	assert.Equal(t, "0", signed(0))
	assert.Equal(t, "1,000,000", comma(1000000))
	assert.Equal(t, "03-14", shortDate("2025-03-14"))
	assert.Equal(t, "Mon", shortDate("Mon"))
	assert.Equal(t, "fix the parser", oneLine("fix   the\nparser", 40))
	assert.Equal(t, "fix", oneLine("fix the parser", 3))
	assert.Equal(t, "1.50", createFormatters(2)(1.5))
	assert.Equal(t, "plain", colorize(&contract.Config{UseColors: false}, "plain", func() string { return "colored" }))
	assert.Equal(t, "colored", colorize(&contract.Config{UseColors: true}, "plain", func() string { return "colored" }))
}

func TestWriteViewJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 1}

	result := schema.EmptySummary(schema.Period7d)
	result.TotalCommits = 5
	require.NoError(t, WriteSummaryResult(result, cfg, time.Second))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "7d", decoded["period"])
	assert.InDelta(t, 5, decoded["total_commits"], 0)
	assert.Equal(t, []any{}, decoded["top_contributors"])
}

func TestWriteViewCSVToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "days.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 1}

	result := schema.DayOfWeekResult{
		Period:   schema.Period7d,
		Timezone: "UTC",
		Days:     []schema.DayOfWeekEntry{{Day: "Monday", Commits: 3}, {Day: "Tuesday", Commits: 0}},
	}
	require.NoError(t, WriteDayOfWeekResult(result, cfg, time.Second))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "day,commits\nMonday,3\nTuesday,0\n", string(raw))
}

func TestOutWriterDispatchesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.txt")
	cfg := &contract.Config{Output: schema.TextOut, OutputFile: path, Precision: 1, Width: 120}

	board := schema.LeaderboardResult{
		Entries:           []schema.LeaderboardEntry{{Rank: 1, Author: "alice", Commits: 4, ActiveDays: 2, PeriodDays: 7}},
		TotalContributors: 1,
		Period:            schema.Period7d,
		RankedBy:          schema.RankByCommits,
	}
	require.NoError(t, NewOutWriter().WriteLeaderboard(board, cfg, time.Second))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "alice")
	assert.Contains(t, string(raw), "2/7")
	assert.Contains(t, string(raw), "Leaderboard of 1 ranked by commits for the last 7 days")
}

func TestWriteFooter(t *testing.T) {
	var buf bytes.Buffer
	writeFooter(&buf, "Velocity", schema.Period30d, 1500*time.Microsecond)
	assert.Equal(t, "Velocity for the last 30 days completed in 2ms\n", buf.String())
}
