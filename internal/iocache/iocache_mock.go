package iocache

import (
	"context"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetStatsStore implements the StoreManager interface.
func (m *MockStoreManager) GetStatsStore() contract.StatsCacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.StatsCacheStore)
	return store
}

// GetNarrativeStore implements the StoreManager interface.
func (m *MockStoreManager) GetNarrativeStore() contract.NarrativeStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.NarrativeStore)
	return store
}

// GetRegistryStore implements the StoreManager interface.
func (m *MockStoreManager) GetRegistryStore() contract.RegistryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RegistryStore)
	return store
}

// MockStatsStore is a mock implementation of StatsCacheStore for testing.
type MockStatsStore struct {
	mock.Mock
}

var _ contract.StatsCacheStore = &MockStatsStore{} // Compile-time check

// BulkGet implements the StatsCacheStore interface.
func (m *MockStatsStore) BulkGet(ctx context.Context, keys []schema.StatsKey) (map[schema.StatsKey]schema.CommitStats, error) {
	args := m.Called(ctx, keys)
	found, _ := args.Get(0).(map[schema.StatsKey]schema.CommitStats)
	return found, args.Error(1)
}

// BulkUpsert implements the StatsCacheStore interface.
func (m *MockStatsStore) BulkUpsert(ctx context.Context, entries []schema.StatsCacheEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// All implements the StatsCacheStore interface.
func (m *MockStatsStore) All(ctx context.Context) ([]schema.StatsCacheEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]schema.StatsCacheEntry)
	return entries, args.Error(1)
}

// GetStatus implements the StatsCacheStore interface.
func (m *MockStatsStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the StatsCacheStore interface.
func (m *MockStatsStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNarrativeStore is a mock implementation of NarrativeStore for testing.
type MockNarrativeStore struct {
	mock.Mock
}

var _ contract.NarrativeStore = &MockNarrativeStore{} // Compile-time check

// GetByProductsPeriod implements the NarrativeStore interface.
func (m *MockNarrativeStore) GetByProductsPeriod(ctx context.Context, productIDs []string, period schema.Period) ([]schema.NarrativeRecord, error) {
	args := m.Called(ctx, productIDs, period)
	records, _ := args.Get(0).([]schema.NarrativeRecord)
	return records, args.Error(1)
}

// Upsert implements the NarrativeStore interface.
func (m *MockNarrativeStore) Upsert(ctx context.Context, record schema.NarrativeRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// DeleteByProduct implements the NarrativeStore interface.
func (m *MockNarrativeStore) DeleteByProduct(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

// All implements the NarrativeStore interface.
func (m *MockNarrativeStore) All(ctx context.Context) ([]schema.NarrativeRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.NarrativeRecord)
	return records, args.Error(1)
}

// GetStatus implements the NarrativeStore interface.
func (m *MockNarrativeStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the NarrativeStore interface.
func (m *MockNarrativeStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRegistryStore is a mock implementation of RegistryStore for testing.
type MockRegistryStore struct {
	mock.Mock
}

var _ contract.RegistryStore = &MockRegistryStore{} // Compile-time check

// GetDecryptedToken implements the CredentialStore interface.
func (m *MockRegistryStore) GetDecryptedToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// GetOrgAdminsWithTokens implements the CredentialStore interface.
func (m *MockRegistryStore) GetOrgAdminsWithTokens(ctx context.Context, orgID string) ([]schema.OrgMember, error) {
	args := m.Called(ctx, orgID)
	members, _ := args.Get(0).([]schema.OrgMember)
	return members, args.Error(1)
}

// ListLinkedRepos implements the RepoStore interface.
func (m *MockRegistryStore) ListLinkedRepos(ctx context.Context, productID string) ([]schema.RepositoryRef, error) {
	args := m.Called(ctx, productID)
	repos, _ := args.Get(0).([]schema.RepositoryRef)
	return repos, args.Error(1)
}

// UpdateFullName implements the RepoStore interface.
func (m *MockRegistryStore) UpdateFullName(ctx context.Context, repoID, newFullName string) error {
	args := m.Called(ctx, repoID, newFullName)
	return args.Error(0)
}

// GetProduct implements the ProductStore interface.
func (m *MockRegistryStore) GetProduct(ctx context.Context, productID string) (*schema.Product, error) {
	args := m.Called(ctx, productID)
	product, _ := args.Get(0).(*schema.Product)
	return product, args.Error(1)
}

// ListAccessibleProducts implements the ProductStore interface.
func (m *MockRegistryStore) ListAccessibleProducts(ctx context.Context, userID, orgID string) ([]schema.Product, error) {
	args := m.Called(ctx, userID, orgID)
	products, _ := args.Get(0).([]schema.Product)
	return products, args.Error(1)
}

// AddProduct implements the RegistryStore interface.
func (m *MockRegistryStore) AddProduct(ctx context.Context, product schema.Product) (schema.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(schema.Product), args.Error(1)
}

// LinkRepo implements the RegistryStore interface.
func (m *MockRegistryStore) LinkRepo(ctx context.Context, repo schema.RepositoryRef) (schema.RepositoryRef, error) {
	args := m.Called(ctx, repo)
	return args.Get(0).(schema.RepositoryRef), args.Error(1)
}

// AddMember implements the RegistryStore interface.
func (m *MockRegistryStore) AddMember(ctx context.Context, member schema.OrgMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

// SetToken implements the RegistryStore interface.
func (m *MockRegistryStore) SetToken(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

// GetStatus implements the RegistryStore interface.
func (m *MockRegistryStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the RegistryStore interface.
func (m *MockRegistryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
