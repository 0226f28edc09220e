package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/commitpulse/internal/parquet"
)

// ExecuteCacheExport exports the statistics and narrative caches to Parquet files.
func ExecuteCacheExport(ctx context.Context, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	statsStore := Manager.GetStatsStore()
	narrativeStore := Manager.GetNarrativeStore()
	if statsStore == nil || narrativeStore == nil {
		return errors.New("cache is not initialized")
	}

	status, err := statsStore.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get cache status: %w", err)
	}
	if !status.Connected {
		return errors.New("cache backend is disabled; nothing to export")
	}
	fmt.Printf("Exporting data from %s backend...\n", status.Backend)

	entries, err := statsStore.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve commit stats: %w", err)
	}
	narratives, err := narrativeStore.All(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve narratives: %w", err)
	}
	if len(entries) == 0 && len(narratives) == 0 {
		return errors.New("no cached data found to export")
	}

	statsFile := outputFile + ".commit_stats.parquet"
	if err := parquet.WriteCommitStatsParquet(parquet.ConvertStatsEntries(entries), statsFile); err != nil {
		return fmt.Errorf("failed to write commit stats: %w", err)
	}
	fmt.Printf("Exported %d commit stats to: %s\n", len(entries), statsFile)

	rows, err := parquet.ConvertNarrativeRecords(narratives)
	if err != nil {
		return err
	}
	narrativesFile := outputFile + ".shipped_summaries.parquet"
	if err := parquet.WriteShippedSummariesParquet(rows, narrativesFile); err != nil {
		return fmt.Errorf("failed to write narratives: %w", err)
	}
	fmt.Printf("Exported %d narratives to: %s\n", len(rows), narrativesFile)

	return nil
}
