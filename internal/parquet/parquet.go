// Package parquet exports cached commit statistics and shipped narratives to
// Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/commitpulse/schema"
	"github.com/parquet-go/parquet-go"
)

// CommitStatsRow maps to the commit_stats_cache table.
type CommitStatsRow struct {
	// RepositoryFullName is the owner/name the statistics were fetched under
	RepositoryFullName string `parquet:"repository_full_name,snappy"`

	CommitSHA    string `parquet:"commit_sha,snappy"`
	Additions    int32  `parquet:"additions,snappy"`
	Deletions    int32  `parquet:"deletions,snappy"`
	FilesChanged int32  `parquet:"files_changed,snappy"`

	// CreatedAt is when the entry was first cached
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// ShippedSummaryRow maps to the shipped_summaries table.
type ShippedSummaryRow struct {
	ProductID string `parquet:"product_id,snappy"`
	Period    string `parquet:"period,snappy"`

	// Items holds the JSON-encoded list of shipped items
	Items string `parquet:"items,snappy"`

	HasSignificantChanges bool  `parquet:"has_significant_changes,snappy"`
	TotalCommits          int32 `parquet:"total_commits,snappy"`
	TotalAdditions        int32 `parquet:"total_additions,snappy"`
	TotalDeletions        int32 `parquet:"total_deletions,snappy"`

	// LastActivityAt is nil when the product had no commits in the period
	LastActivityAt *time.Time `parquet:"last_activity_at,optional,snappy"`

	GeneratedAt time.Time `parquet:"generated_at,snappy"`
}

// writeRows writes rows of any struct type to a Parquet file.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteCommitStatsParquet writes commit statistics rows to a Parquet file.
func WriteCommitStatsParquet(data []CommitStatsRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteShippedSummariesParquet writes narrative rows to a Parquet file.
func WriteShippedSummariesParquet(data []ShippedSummaryRow, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertStatsEntries converts cache entries to Parquet rows.
func ConvertStatsEntries(entries []schema.StatsCacheEntry) []CommitStatsRow {
	result := make([]CommitStatsRow, len(entries))
	for i, e := range entries {
		result[i] = CommitStatsRow{
			RepositoryFullName: e.FullName,
			CommitSHA:          e.SHA,
			Additions:          int32(e.Additions),
			Deletions:          int32(e.Deletions),
			FilesChanged:       int32(e.FilesChanged),
			CreatedAt:          e.CreatedAt.UTC(),
		}
	}
	return result
}

// ConvertNarrativeRecords converts cached narratives to Parquet rows.
func ConvertNarrativeRecords(records []schema.NarrativeRecord) ([]ShippedSummaryRow, error) {
	result := make([]ShippedSummaryRow, len(records))
	for i, r := range records {
		items := r.Items
		if items == nil {
			items = []schema.ShippedItem{}
		}
		payload, err := json.Marshal(items)
		if err != nil {
			return nil, fmt.Errorf("failed to encode items of %s: %w", r.ProductID, err)
		}
		result[i] = ShippedSummaryRow{
			ProductID:             r.ProductID,
			Period:                string(r.Period),
			Items:                 string(payload),
			HasSignificantChanges: r.HasSignificantChanges,
			TotalCommits:          int32(r.TotalCommits),
			TotalAdditions:        int32(r.TotalAdditions),
			TotalDeletions:        int32(r.TotalDeletions),
			LastActivityAt:        r.LastActivityAt,
			GeneratedAt:           r.GeneratedAt.UTC(),
		}
	}
	return result, nil
}
