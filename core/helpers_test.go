package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func record(sha, author string, ts time.Time) schema.CommitRecord {
	return schema.CommitRecord{
		SHA:           sha,
		Message:       "update " + sha + "\n\nlonger body",
		AuthorName:    author,
		AuthorAvatar:  "https://avatars.example.com/" + author,
		CommitterDate: ts,
		HTMLURL:       "https://github.com/commit/" + sha,
	}
}

func repoRef(id, name string) schema.RepositoryRef {
	return schema.RepositoryRef{ID: id, ProductID: "p1", Name: name, FullName: "acme/" + name}
}

// newTestEngine builds an engine whose clients are all the given mock.
func newTestEngine(t *testing.T, registry *iocache.MockRegistryStore, stats contract.StatsCacheStore,
	narratives contract.NarrativeStore, summarizer contract.Summarizer, client *contract.MockHostingClient,
) *Engine {
	t.Helper()
	return newTestEngineWithOptions(t, registry, stats, narratives, summarizer, client, EngineOptions{RepoConcurrency: 4, StatsConcurrency: 2})
}

func newTestEngineWithOptions(t *testing.T, registry *iocache.MockRegistryStore, stats contract.StatsCacheStore,
	narratives contract.NarrativeStore, summarizer contract.Summarizer, client *contract.MockHostingClient, opts EngineOptions,
) *Engine {
	t.Helper()
	factory := func(context.Context, string) contract.HostingClient { return client }
	e, err := NewEngine(registry, stats, narratives, summarizer, factory, opts)
	require.NoError(t, err)
	e.now = func() time.Time { return testNow }
	t.Cleanup(e.Close)
	return e
}

// peakTracker records the highest number of overlapping calls.
type peakTracker struct {
	inflight atomic.Int32
	peak     atomic.Int32
}

// hold counts one call in flight for d.
func (p *peakTracker) hold(d time.Duration) {
	n := p.inflight.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(d)
	p.inflight.Add(-1)
}
