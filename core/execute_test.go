package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExecuteRequiresScope(t *testing.T) {
	mgr := &iocache.MockStoreManager{}
	ctx := context.Background()

	assert.EqualError(t, ExecuteSummary(ctx, &contract.Config{}, mgr), "--product is required")
	assert.EqualError(t, ExecuteDashboard(ctx, &contract.Config{}, mgr), "--user is required")
	mgr.AssertNotCalled(t, "GetRegistryStore")
}

func TestExecuteWithoutRegistry(t *testing.T) {
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRegistryStore").Return(nil)
	mgr.On("GetStatsStore").Return(nil)
	mgr.On("GetNarrativeStore").Return(nil)

	err := ExecuteVelocity(context.Background(), &contract.Config{ProductID: "p1"}, mgr)
	assert.ErrorContains(t, err, "product registry is not initialized")
}

func TestExecuteSummaryWritesEmptyView(t *testing.T) {
	registry := &iocache.MockRegistryStore{}
	registry.On("GetDecryptedToken", mock.Anything, "u1").Return("", nil)
	registry.On("GetProduct", mock.Anything, "p1").Return(nil, nil)

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetRegistryStore").Return(registry)
	mgr.On("GetStatsStore").Return(nil)
	mgr.On("GetNarrativeStore").Return(nil)

	path := filepath.Join(t.TempDir(), "summary.json")
	cfg := &contract.Config{
		ProductID:  "p1",
		UserID:     "u1",
		Period:     schema.Period30d,
		Output:     schema.JSONOut,
		OutputFile: path,
		Precision:  1,
	}
	require.NoError(t, ExecuteSummary(context.Background(), cfg, mgr))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var result schema.SummaryResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, schema.EmptySummary(schema.Period30d), result)
}

func TestDashboardRequestFromConfig(t *testing.T) {
	cfg := &contract.Config{UserID: "u1", OrgID: "org", Days: 14}
	assert.Equal(t, DashboardRequest{UserID: "u1", OrgID: "org", Days: 14}, DashboardRequestFromConfig(cfg))
}
