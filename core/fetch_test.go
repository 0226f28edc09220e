package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFetcher(t *testing.T) *Fetcher {
	t.Helper()
	f, err := NewFetcher(2)
	require.NoError(t, err)
	t.Cleanup(f.Release)
	return f
}

func TestFetch(t *testing.T) {
	since := testNow.AddDate(0, 0, -7)
	client := &contract.MockHostingClient{}
	client.On("ListCommits", mock.Anything, "acme/api", mock.Anything, since, 50).Return([]schema.CommitRecord{
		record("a1", "alice", testNow.Add(-time.Hour)),
		record("a2", "", testNow.Add(-2*time.Hour)),
		record("old", "alice", since.Add(-time.Second)), // before the window
	}, nil)
	client.On("ListCommits", mock.Anything, "acme/web", mock.Anything, since, 50).Return(nil, errors.New("500 internal error"))
	client.On("ListCommits", mock.Anything, "acme/empty", mock.Anything, since, 50).Return(nil, nil)

	repos := []schema.RepositoryRef{repoRef("r1", "api"), repoRef("r2", "web"), repoRef("r3", "empty")}
	outcome := newTestFetcher(t).Fetch(context.Background(), client, repos, since, 50)

	require.Len(t, outcome.Events, 2)
	assert.Empty(t, outcome.Repairs)

	e := outcome.Events[0]
	assert.Equal(t, "commit:a1", e.ID)
	assert.Equal(t, schema.EventKindCommit, e.Kind)
	assert.Equal(t, "2025-03-14T11:00:00Z", e.Timestamp)
	assert.Equal(t, "r1", e.RepositoryID)
	assert.Equal(t, "api", e.RepositoryName)
	assert.Equal(t, "acme/api", e.RepositoryFullName)
	assert.Equal(t, "update a1", e.Message)
	assert.Nil(t, e.Stats)
	assert.Equal(t, unknownAuthor, outcome.Events[1].Author)
}

func TestFetchUsesLinkedBranch(t *testing.T) {
	since := testNow.AddDate(0, 0, -7)
	client := &contract.MockHostingClient{}
	client.On("ListCommits", mock.Anything, "acme/api", "release", since, 10).
		Return([]schema.CommitRecord{record("a1", "alice", testNow.Add(-time.Hour))}, nil)

	repo := repoRef("r1", "api")
	repo.DefaultBranch = "release"
	outcome := newTestFetcher(t).Fetch(context.Background(), client, []schema.RepositoryRef{repo}, since, 10)
	require.Len(t, outcome.Events, 1)
	client.AssertExpectations(t)
}

func TestFetchNoRepositories(t *testing.T) {
	outcome := newTestFetcher(t).Fetch(context.Background(), &contract.MockHostingClient{}, nil, testNow, 10)
	assert.Nil(t, outcome.Events)
	assert.Nil(t, outcome.Repairs)
}

func TestFetchRenamedRepository(t *testing.T) {
	since := testNow.AddDate(0, 0, -7)

	t.Run("new name in the error", func(t *testing.T) {
		client := &contract.MockHostingClient{}
		client.On("ListCommits", mock.Anything, "acme/api", mock.Anything, since, 10).
			Return(nil, &contract.RepoRenamedError{FullName: "acme/api", NewFullName: "acme/api-v2", ProviderID: 42}).Once()
		client.On("ListCommits", mock.Anything, "acme/api-v2", mock.Anything, since, 10).
			Return([]schema.CommitRecord{record("a1", "alice", testNow.Add(-time.Hour))}, nil).Once()

		outcome := newTestFetcher(t).Fetch(context.Background(), client, []schema.RepositoryRef{repoRef("r1", "api")}, since, 10)
		require.Len(t, outcome.Events, 1)
		assert.Equal(t, "acme/api-v2", outcome.Events[0].RepositoryFullName)
		assert.Equal(t, []schema.RenameRepair{{RepositoryID: "r1", OldFullName: "acme/api", NewFullName: "acme/api-v2", ProviderID: 42}}, outcome.Repairs)
		client.AssertNotCalled(t, "GetRepoFullNameByID", mock.Anything, mock.Anything)
	})

	t.Run("new name looked up by provider id", func(t *testing.T) {
		repo := repoRef("r1", "api")
		repo.ProviderID = 7
		client := &contract.MockHostingClient{}
		client.On("ListCommits", mock.Anything, "acme/api", mock.Anything, since, 10).Return(nil, &contract.RepoRenamedError{FullName: "acme/api"})
		client.On("GetRepoFullNameByID", mock.Anything, int64(7)).Return("other/api", nil)
		client.On("ListCommits", mock.Anything, "other/api", mock.Anything, since, 10).
			Return([]schema.CommitRecord{record("a1", "alice", testNow.Add(-time.Hour))}, nil)

		outcome := newTestFetcher(t).Fetch(context.Background(), client, []schema.RepositoryRef{repo}, since, 10)
		require.Len(t, outcome.Events, 1)
		require.Len(t, outcome.Repairs, 1)
		assert.Equal(t, "other/api", outcome.Repairs[0].NewFullName)
		assert.Equal(t, int64(7), outcome.Repairs[0].ProviderID)
	})

	t.Run("retry fails", func(t *testing.T) {
		client := &contract.MockHostingClient{}
		client.On("ListCommits", mock.Anything, "acme/api", mock.Anything, since, 10).
			Return(nil, &contract.RepoRenamedError{FullName: "acme/api", NewFullName: "acme/api-v2"})
		client.On("ListCommits", mock.Anything, "acme/api-v2", mock.Anything, since, 10).
			Return(nil, &contract.RepoRenamedError{FullName: "acme/api-v2", NewFullName: "acme/api-v3"})

		outcome := newTestFetcher(t).Fetch(context.Background(), client, []schema.RepositoryRef{repoRef("r1", "api")}, since, 10)
		assert.Empty(t, outcome.Events)
		assert.Len(t, outcome.Repairs, 1)
		client.AssertNumberOfCalls(t, "ListCommits", 2)
	})

	t.Run("unresolvable", func(t *testing.T) {
		client := &contract.MockHostingClient{}
		client.On("ListCommits", mock.Anything, "acme/api", mock.Anything, since, 10).Return(nil, &contract.RepoRenamedError{FullName: "acme/api"})

		outcome := newTestFetcher(t).Fetch(context.Background(), client, []schema.RepositoryRef{repoRef("r1", "api")}, since, 10)
		assert.Empty(t, outcome.Events)
		assert.Empty(t, outcome.Repairs)
	})
}

func TestApplyRepairs(t *testing.T) {
	ctx := context.Background()
	registry := &iocache.MockRegistryStore{}
	registry.On("UpdateFullName", ctx, "r1", "acme/api-v2").Return(nil).Once()
	registry.On("UpdateFullName", ctx, "r2", "acme/web-v2").Return(errors.New("locked")).Once()

	applied := ApplyRepairs(ctx, registry, []schema.RenameRepair{
		{RepositoryID: "r1", OldFullName: "acme/api", NewFullName: "acme/api-v2"},
		{RepositoryID: "r2", OldFullName: "acme/web", NewFullName: "acme/web-v2"},
	})
	assert.Equal(t, 1, applied)
	registry.AssertExpectations(t)
}

func TestNormalizeCommit(t *testing.T) {
	rec := record("abc", "alice", time.Date(2025, 3, 14, 12, 0, 0, 0, time.FixedZone("CET", 3600)))
	rec.Message = strings.Repeat("é", 150) + "\nbody"

	e := NormalizeCommit(schema.RepositoryRef{ID: "r1", FullName: "acme/api"}, rec)
	assert.Equal(t, "2025-03-14T11:00:00Z", e.Timestamp)
	assert.Equal(t, "api", e.RepositoryName)
	assert.Equal(t, 100, len([]rune(e.Message)))
	assert.Equal(t, "commit:abc", e.ID)
}
