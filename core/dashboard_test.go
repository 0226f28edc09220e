package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var dashboardProducts = []schema.Product{
	{ID: "p1", Name: "Web", Color: "#3366ff", OrganizationID: "org"},
	{ID: "p2", OrganizationID: "org"},
}

// dashboardFixture serves two products: p1 with three commits by alice and
// p2 with one commit by bob.
func dashboardFixture() (*iocache.MockRegistryStore, *contract.MockHostingClient) {
	registry := &iocache.MockRegistryStore{}
	registry.On("ListAccessibleProducts", mock.Anything, "u1", "").Return(dashboardProducts, nil)
	registry.On("GetDecryptedToken", mock.Anything, "u1").Return("token", nil)
	registry.On("ListLinkedRepos", mock.Anything, "p1").Return([]schema.RepositoryRef{repoRef("ra", "repo-a")}, nil)
	registry.On("ListLinkedRepos", mock.Anything, "p2").Return([]schema.RepositoryRef{repoRef("rc", "repo-c")}, nil)

	client := &contract.MockHostingClient{}
	client.On("ListCommits", mock.Anything, "acme/repo-a", mock.Anything, mock.Anything, mock.Anything).Return(aliceCommits(), nil)
	client.On("ListCommits", mock.Anything, "acme/repo-c", mock.Anything, mock.Anything, mock.Anything).
		Return([]schema.CommitRecord{record("c9", "bob", testNow.Add(-2*time.Hour))}, nil)
	client.On("GetCommitStats", mock.Anything, mock.Anything, mock.Anything).Return(schema.CommitStats{Additions: 2, Deletions: 1, FilesChanged: 1}, nil)
	return registry, client
}

func TestDashboardAttachesCachedNarratives(t *testing.T) {
	registry, client := dashboardFixture()
	generated := testNow.Add(-time.Hour)
	narratives := &iocache.MockNarrativeStore{}
	narratives.On("GetByProductsPeriod", mock.Anything, []string{"p1", "p2"}, schema.Period7d).Return([]schema.NarrativeRecord{{
		ProductID:             "p1",
		Period:                schema.Period7d,
		Items:                 []schema.ShippedItem{{Description: "Added login", Category: schema.CategoryFeature}},
		HasSignificantChanges: true,
		TotalCommits:          3,
		GeneratedAt:           generated,
	}}, nil)

	e := newTestEngine(t, registry, nil, narratives, nil, client)
	result, err := e.Dashboard(context.Background(), DashboardRequest{UserID: "u1", Days: 7})
	require.NoError(t, err)

	assert.Equal(t, schema.Period7d, result.Period)
	assert.Equal(t, 4, result.TotalCommits)
	assert.Equal(t, 8, result.TotalAdditions)
	assert.Equal(t, 4, result.TotalDeletions)
	assert.Equal(t, 2, result.TotalContributors)
	assert.Equal(t, 2, result.ActiveProducts)
	assert.Len(t, result.DailyActivity, 7)
	assert.False(t, result.IsGenerating)

	require.Len(t, result.Products, 1)
	card := result.Products[0]
	assert.Equal(t, "p1", card.ProductID)
	assert.Equal(t, "Web", card.ProductName)
	assert.Equal(t, "#3366ff", card.ProductColor)
	assert.Equal(t, "Added login", card.Items[0].Description)
	require.NotNil(t, result.GeneratedAt)
	assert.Equal(t, generated, *result.GeneratedAt)
}

func TestDashboardWithoutNarrativeStore(t *testing.T) {
	registry, client := dashboardFixture()
	e := newTestEngine(t, registry, nil, nil, nil, client)

	result, err := e.Dashboard(context.Background(), DashboardRequest{UserID: "u1", Days: 30})
	require.NoError(t, err)
	assert.Equal(t, schema.Period30d, result.Period)
	assert.Equal(t, 4, result.TotalCommits)
	assert.Empty(t, result.Products)
	assert.Nil(t, result.GeneratedAt)
}

func TestGenerateDashboardSkipsFailedProducts(t *testing.T) {
	registry, client := dashboardFixture()

	summarizer := &contract.MockSummarizer{}
	summarizer.On("SummarizeShipped", mock.Anything, mock.MatchedBy(func(in schema.ShippedInput) bool {
		return in.ProductName == "Web"
	})).Return(schema.ShippedSummary{
		Items:                 []schema.ShippedItem{{Description: "Faster builds", Category: schema.CategoryImprovement}},
		HasSignificantChanges: true,
	}, nil)
	summarizer.On("SummarizeShipped", mock.Anything, mock.MatchedBy(func(in schema.ShippedInput) bool {
		return in.ProductName == "Unnamed"
	})).Return(schema.ShippedSummary{}, errors.New("quota exceeded"))

	narratives := &iocache.MockNarrativeStore{}
	narratives.On("Upsert", mock.Anything, mock.MatchedBy(func(r schema.NarrativeRecord) bool {
		return r.ProductID == "p1" && r.TotalCommits == 3 && r.TotalAdditions == 6 && r.TotalDeletions == 3
	})).Return(nil).Once()

	e := newTestEngine(t, registry, nil, narratives, summarizer, client)
	result, err := e.GenerateDashboard(context.Background(), DashboardRequest{UserID: "u1", Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalCommits)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "Web", result.Products[0].ProductName)
	assert.True(t, result.Products[0].HasSignificantChanges)
	assert.Equal(t, 3, result.Products[0].TotalCommits)
	require.NotNil(t, result.Products[0].LastActivityAt)
	assert.True(t, testNow.Add(-time.Hour).Equal(*result.Products[0].LastActivityAt))
	require.NotNil(t, result.GeneratedAt)
	assert.True(t, testNow.Equal(*result.GeneratedAt))

	narratives.AssertExpectations(t)
	narratives.AssertNumberOfCalls(t, "Upsert", 1)
	summarizer.AssertNumberOfCalls(t, "SummarizeShipped", 2)
}

func TestGenerateDashboardRequiresSummarizer(t *testing.T) {
	registry := &iocache.MockRegistryStore{}
	e := newTestEngine(t, registry, nil, nil, nil, &contract.MockHostingClient{})

	result, err := e.GenerateDashboard(context.Background(), DashboardRequest{UserID: "u1", Days: 14})
	assert.ErrorIs(t, err, errNoSummarizer)
	assert.Equal(t, schema.EmptyDashboard(schema.Period14d), result)
	registry.AssertNotCalled(t, "ListAccessibleProducts", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardNoProducts(t *testing.T) {
	registry := &iocache.MockRegistryStore{}
	registry.On("ListAccessibleProducts", mock.Anything, "u1", "org").Return(nil, nil)
	summarizer := &contract.MockSummarizer{}
	e := newTestEngine(t, registry, nil, nil, summarizer, &contract.MockHostingClient{})
	ctx := context.Background()
	req := DashboardRequest{UserID: "u1", OrgID: "org", Days: 5}

	result, err := e.Dashboard(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, schema.EmptyDashboard(schema.Period7d), result)

	result, err = e.GenerateDashboard(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, schema.EmptyDashboard(schema.Period7d), result)
	summarizer.AssertNotCalled(t, "SummarizeShipped", mock.Anything, mock.Anything)
}

func TestDashboardRegistryError(t *testing.T) {
	registry := &iocache.MockRegistryStore{}
	registry.On("ListAccessibleProducts", mock.Anything, "u1", "").Return(nil, errors.New("db down"))
	e := newTestEngine(t, registry, nil, nil, nil, &contract.MockHostingClient{})

	_, err := e.Dashboard(context.Background(), DashboardRequest{UserID: "u1", Days: 7})
	assert.ErrorContains(t, err, "db down")
}

func TestDashboardProductTimeoutKeepsOthers(t *testing.T) {
	registry := &iocache.MockRegistryStore{}
	registry.On("ListAccessibleProducts", mock.Anything, "u1", "").Return(dashboardProducts, nil)
	registry.On("GetDecryptedToken", mock.Anything, "u1").Return("token", nil)
	registry.On("ListLinkedRepos", mock.Anything, "p1").Return([]schema.RepositoryRef{repoRef("ra", "repo-a")}, nil)
	registry.On("ListLinkedRepos", mock.Anything, "p2").Return([]schema.RepositoryRef{repoRef("rc", "repo-c")}, nil)

	client := &contract.MockHostingClient{}
	client.On("ListCommits", mock.Anything, "acme/repo-a", mock.Anything, mock.Anything, mock.Anything).Return(aliceCommits(), nil)
	// repo-c hangs until its product deadline passes
	client.On("ListCommits", mock.Anything, "acme/repo-c", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { <-args.Get(0).(context.Context).Done() }).
		Return(nil, context.DeadlineExceeded)
	client.On("GetCommitStats", mock.Anything, mock.Anything, mock.Anything).Return(schema.CommitStats{Additions: 2, Deletions: 1}, nil)

	e := newTestEngineWithOptions(t, registry, nil, nil, nil, client, EngineOptions{
		RepoConcurrency:  4,
		StatsConcurrency: 2,
		ProductTimeout:   50 * time.Millisecond,
	})
	start := time.Now()
	result, err := e.Dashboard(context.Background(), DashboardRequest{UserID: "u1", Days: 7})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 3, result.TotalCommits)
	assert.Equal(t, 6, result.TotalAdditions)
	assert.Equal(t, 1, result.ActiveProducts)
	assert.Equal(t, 1, result.TotalContributors)
}
