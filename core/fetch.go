package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/metrics"
	"github.com/huangsam/commitpulse/schema"
	"github.com/panjf2000/ants/v2"
)

// Normalization limits.
const (
	messageMaxRunes = 100
	unknownAuthor   = "Unknown"
)

// FetchOutcome holds the events of a fetch and the renames found along the way.
// Events is nil when no repository produced a commit in the window.
type FetchOutcome struct {
	Events  []schema.TimelineEvent
	Repairs []schema.RenameRepair
}

// Fetcher lists the commits of many repositories through a bounded goroutine pool.
type Fetcher struct {
	pool *ants.Pool
}

// NewFetcher creates a fetcher that runs at most size repository listings at once.
func NewFetcher(size int) (*Fetcher, error) {
	if size <= 0 {
		size = contract.DefaultRepoConcurrency
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch pool: %w", err)
	}
	return &Fetcher{pool: pool}, nil
}

// Release stops the pool workers.
func (f *Fetcher) Release() {
	f.pool.Release()
}

// repoFetch is the result of listing one repository.
type repoFetch struct {
	events []schema.TimelineEvent
	repair *schema.RenameRepair
}

// Fetch lists up to limit commits per repository committed after since.
// A failing repository is logged and contributes no events.
func (f *Fetcher) Fetch(ctx context.Context, client contract.HostingClient, repos []schema.RepositoryRef, since time.Time, limit int) FetchOutcome {
	results := make([]repoFetch, len(repos))

	var wg sync.WaitGroup
	for i, repo := range repos {
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()
			results[i] = fetchRepo(ctx, client, repo, since, limit)
		})
		if err != nil {
			wg.Done()
			contract.LogWarn("Cannot schedule fetch of "+repo.FullName, err)
		}
	}
	wg.Wait()

	var outcome FetchOutcome
	for _, r := range results {
		outcome.Events = append(outcome.Events, r.events...)
		if r.repair != nil {
			outcome.Repairs = append(outcome.Repairs, *r.repair)
		}
	}
	return outcome
}

// fetchRepo lists one repository, following a rename once.
func fetchRepo(ctx context.Context, client contract.HostingClient, repo schema.RepositoryRef, since time.Time, limit int) repoFetch {
	var out repoFetch

	records, err := client.ListCommits(ctx, repo.FullName, repo.DefaultBranch, since, limit)
	metrics.ObserveProvider("list_commits", err)
	if renamed, ok := contract.AsRepoRenamed(err); ok {
		repair, rerr := resolveRename(ctx, client, repo, renamed)
		if rerr != nil {
			contract.LogWarn("Cannot resolve new name of "+repo.FullName, rerr)
			return out
		}
		metrics.RepoRenames.Inc()
		out.repair = &repair
		repo.FullName = repair.NewFullName

		records, err = client.ListCommits(ctx, repo.FullName, repo.DefaultBranch, since, limit)
		metrics.ObserveProvider("list_commits", err)
	}
	if err != nil {
		contract.LogWarn("Cannot list commits of "+repo.FullName, err)
		return out
	}

	sinceKey := schema.FormatTimestamp(since)
	for _, rec := range records {
		event := NormalizeCommit(repo, rec)
		if event.Timestamp < sinceKey {
			continue
		}
		out.events = append(out.events, event)
	}
	return out
}

// resolveRename works out where a moved repository lives now.
func resolveRename(ctx context.Context, client contract.HostingClient, repo schema.RepositoryRef, renamed *contract.RepoRenamedError) (schema.RenameRepair, error) {
	providerID := renamed.ProviderID
	if providerID == 0 {
		providerID = repo.ProviderID
	}

	newName := renamed.NewFullName
	if newName == "" {
		if providerID == 0 {
			return schema.RenameRepair{}, errors.New("no provider id to look up the moved repository")
		}
		var err error
		newName, err = client.GetRepoFullNameByID(ctx, providerID)
		metrics.ObserveProvider("get_repo", err)
		if err != nil {
			return schema.RenameRepair{}, err
		}
	}
	if newName == "" || newName == repo.FullName {
		return schema.RenameRepair{}, fmt.Errorf("provider reported no new name for %s", repo.FullName)
	}

	return schema.RenameRepair{
		RepositoryID: repo.ID,
		OldFullName:  repo.FullName,
		NewFullName:  newName,
		ProviderID:   providerID,
	}, nil
}

// NormalizeCommit converts a provider commit into a timeline event of repo.
func NormalizeCommit(repo schema.RepositoryRef, rec schema.CommitRecord) schema.TimelineEvent {
	author := rec.AuthorName
	if author == "" {
		author = unknownAuthor
	}
	return schema.TimelineEvent{
		ID:                 schema.EventKindCommit + ":" + rec.SHA,
		Kind:               schema.EventKindCommit,
		Timestamp:          schema.FormatTimestamp(rec.CommitterDate),
		RepositoryID:       repo.ID,
		RepositoryName:     repo.DisplayName(),
		RepositoryFullName: repo.FullName,
		SHA:                rec.SHA,
		Message:            schema.FirstLine(rec.Message, messageMaxRunes),
		Author:             author,
		AuthorAvatar:       rec.AuthorAvatar,
		URL:                rec.HTMLURL,
	}
}

// ApplyRepairs records every rename in the repository store and returns how
// many were stored. Failures are logged and skipped.
func ApplyRepairs(ctx context.Context, store contract.RepoStore, repairs []schema.RenameRepair) int {
	applied := 0
	for _, r := range repairs {
		if err := store.UpdateFullName(ctx, r.RepositoryID, r.NewFullName); err != nil {
			contract.LogWarn("Cannot record rename of "+r.OldFullName, err)
			continue
		}
		contract.LogInfo("Repository %s is now %s", r.OldFullName, r.NewFullName)
		applied++
	}
	return applied
}
