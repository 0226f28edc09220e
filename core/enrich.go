package core

import (
	"context"
	"sync"
	"time"

	"github.com/huangsam/commitpulse/core/agg"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/metrics"
	"github.com/huangsam/commitpulse/schema"
	"golang.org/x/sync/semaphore"
)

// Enricher attaches per-commit statistics, reading the cache before the provider.
type Enricher struct {
	store contract.StatsCacheStore // nil disables caching
	limit int64
}

// NewEnricher creates an enricher allowing at most concurrency provider calls at once.
func NewEnricher(store contract.StatsCacheStore, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = contract.DefaultStatsConcurrency
	}
	return &Enricher{store: store, limit: int64(concurrency)}
}

// Enrich returns a copy of events with stats filled in. Commits whose stats
// cannot be fetched keep nil stats. A failing cache degrades to all misses.
func (e *Enricher) Enrich(ctx context.Context, client contract.HostingClient, events []schema.TimelineEvent) []schema.TimelineEvent {
	if len(events) == 0 {
		return events
	}
	enriched := make([]schema.TimelineEvent, len(events))
	copy(enriched, events)

	keys := make([]schema.StatsKey, 0, len(enriched))
	seen := make(map[schema.StatsKey]struct{}, len(enriched))
	for _, ev := range enriched {
		k := schema.StatsKey{FullName: ev.RepositoryFullName, SHA: ev.SHA}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	cached := e.lookup(ctx, keys)
	var misses []schema.StatsKey
	for _, k := range keys {
		if _, ok := cached[k]; !ok {
			misses = append(misses, k)
		}
	}
	metrics.StatsCacheLookups.WithLabelValues(metrics.OutcomeHit).Add(float64(len(keys) - len(misses)))
	metrics.StatsCacheLookups.WithLabelValues(metrics.OutcomeMiss).Add(float64(len(misses)))

	fetched := e.fetchStats(ctx, client, misses)

	for i := range enriched {
		k := schema.StatsKey{FullName: enriched[i].RepositoryFullName, SHA: enriched[i].SHA}
		if st, ok := cached[k]; ok {
			enriched[i].Stats = &st
		} else if st, ok := fetched[k]; ok {
			enriched[i].Stats = &st
		}
	}

	e.writeBack(ctx, fetched)
	return enriched
}

// lookup reads the cache once for every key.
func (e *Enricher) lookup(ctx context.Context, keys []schema.StatsKey) map[schema.StatsKey]schema.CommitStats {
	if e.store == nil {
		return map[schema.StatsKey]schema.CommitStats{}
	}
	found, err := e.store.BulkGet(ctx, keys)
	if err != nil {
		metrics.StatsCacheErrors.WithLabelValues(metrics.OpRead).Inc()
		contract.LogWarn("Cannot read commit stats cache", err)
		return map[schema.StatsKey]schema.CommitStats{}
	}
	return found
}

// fetchStats asks the provider for every key, bounded by the semaphore.
func (e *Enricher) fetchStats(ctx context.Context, client contract.HostingClient, keys []schema.StatsKey) map[schema.StatsKey]schema.CommitStats {
	fetched := make(map[schema.StatsKey]schema.CommitStats, len(keys))
	if len(keys) == 0 {
		return fetched
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(e.limit)
	for _, k := range keys {
		if err := sem.Acquire(ctx, 1); err != nil {
			break // context done; the rest stay unenriched
		}
		wg.Go(func() {
			defer sem.Release(1)
			st, err := client.GetCommitStats(ctx, k.FullName, k.SHA)
			metrics.ObserveProvider("get_commit_stats", err)
			if err != nil {
				contract.LogWarn("Cannot fetch stats of "+k.FullName+"@"+schema.ShortSHA(k.SHA), err)
				return
			}
			mu.Lock()
			fetched[k] = st
			mu.Unlock()
		})
	}
	wg.Wait()
	return fetched
}

// writeBack stores freshly fetched stats in one batch.
func (e *Enricher) writeBack(ctx context.Context, fetched map[schema.StatsKey]schema.CommitStats) {
	if e.store == nil || len(fetched) == 0 {
		return
	}
	now := time.Now()
	entries := make([]schema.StatsCacheEntry, 0, len(fetched))
	for k, st := range fetched {
		entries = append(entries, schema.StatsCacheEntry{StatsKey: k, CommitStats: st, CreatedAt: now})
	}
	if err := e.store.BulkUpsert(ctx, entries); err != nil {
		metrics.StatsCacheErrors.WithLabelValues(metrics.OpWrite).Inc()
		contract.LogWarn("Cannot write commit stats cache", err)
	}
}

// CollectFiles fetches the changed files of every event under the same bound
// as stats enrichment. File lists are not cached; failed commits are skipped.
func (e *Enricher) CollectFiles(ctx context.Context, client contract.HostingClient, events []schema.TimelineEvent) []agg.CommitFiles {
	results := make([]*agg.CommitFiles, len(events))

	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(e.limit)
	for i, ev := range events {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Go(func() {
			defer sem.Release(1)
			files, err := client.GetCommitFiles(ctx, ev.RepositoryFullName, ev.SHA)
			metrics.ObserveProvider("get_commit_files", err)
			if err != nil {
				contract.LogWarn("Cannot fetch files of "+ev.RepositoryFullName+"@"+schema.ShortSHA(ev.SHA), err)
				return
			}
			results[i] = &agg.CommitFiles{RepositoryName: ev.RepositoryName, Files: files}
		})
	}
	wg.Wait()

	commits := make([]agg.CommitFiles, 0, len(events))
	for _, r := range results {
		if r != nil {
			commits = append(commits, *r)
		}
	}
	return commits
}
