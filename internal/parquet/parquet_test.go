package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitStatsRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(CommitStatsRow))
	require.NotNil(t, s)

	for _, colName := range []string{"repository_full_name", "commit_sha", "additions", "deletions", "files_changed", "created_at"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestShippedSummaryRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(ShippedSummaryRow))
	require.NotNil(t, s)

	expectedColumns := []string{
		"product_id",
		"period",
		"items",
		"has_significant_changes",
		"total_commits",
		"total_additions",
		"total_deletions",
		"last_activity_at",
		"generated_at",
	}
	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestWriteCommitStatsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "stats.parquet")
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := ConvertStatsEntries([]schema.StatsCacheEntry{
		{StatsKey: schema.StatsKey{FullName: "acme/api", SHA: "abc123"}, CommitStats: schema.CommitStats{Additions: 10, Deletions: 2, FilesChanged: 3}, CreatedAt: created},
		{StatsKey: schema.StatsKey{FullName: "acme/web", SHA: "def456"}, CommitStats: schema.CommitStats{Additions: 1}, CreatedAt: created},
	})

	require.NoError(t, WriteCommitStatsParquet(rows, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[CommitStatsRow](file)
	defer func() { _ = reader.Close() }()

	readData := make([]CommitStatsRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "acme/api", readData[0].RepositoryFullName)
	assert.Equal(t, int32(10), readData[0].Additions)
	assert.Equal(t, int32(3), readData[0].FilesChanged)
	assert.Equal(t, "def456", readData[1].CommitSHA)
	assert.WithinDuration(t, created, readData[0].CreatedAt, time.Second)
}

func TestWriteShippedSummariesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "narratives.parquet")
	last := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows, err := ConvertNarrativeRecords([]schema.NarrativeRecord{
		{
			ProductID:             "p1",
			Period:                schema.Period7d,
			Items:                 []schema.ShippedItem{{Description: "Added dark mode", Category: schema.CategoryFeature}},
			HasSignificantChanges: true,
			TotalCommits:          4,
			LastActivityAt:        &last,
			GeneratedAt:           last.Add(time.Hour),
		},
		{ProductID: "p2", Period: schema.Period30d, GeneratedAt: last},
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"description":"Added dark mode","category":"feature"}]`, rows[0].Items)
	assert.Equal(t, "[]", rows[1].Items)

	require.NoError(t, WriteShippedSummariesParquet(rows, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[ShippedSummaryRow](file)
	defer func() { _ = reader.Close() }()

	readData := make([]ShippedSummaryRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	assert.Equal(t, "7d", readData[0].Period)
	assert.True(t, readData[0].HasSignificantChanges)
	require.NotNil(t, readData[0].LastActivityAt)
	assert.WithinDuration(t, last, *readData[0].LastActivityAt, time.Second)
	assert.Nil(t, readData[1].LastActivityAt)
}
