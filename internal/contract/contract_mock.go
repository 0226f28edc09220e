package contract

import (
	"context"
	"time"

	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/mock"
)

// MockHostingClient is a mock implementation of HostingClient for testing.
type MockHostingClient struct {
	mock.Mock
}

var _ HostingClient = &MockHostingClient{} // Compile-time check

// ListCommits implements the HostingClient interface.
func (m *MockHostingClient) ListCommits(ctx context.Context, fullName, branch string, since time.Time, limit int) ([]schema.CommitRecord, error) {
	args := m.Called(ctx, fullName, branch, since, limit)
	records, _ := args.Get(0).([]schema.CommitRecord)
	return records, args.Error(1)
}

// GetCommitStats implements the HostingClient interface.
func (m *MockHostingClient) GetCommitStats(ctx context.Context, fullName, sha string) (schema.CommitStats, error) {
	args := m.Called(ctx, fullName, sha)
	stats, _ := args.Get(0).(schema.CommitStats)
	return stats, args.Error(1)
}

// GetCommitFiles implements the HostingClient interface.
func (m *MockHostingClient) GetCommitFiles(ctx context.Context, fullName, sha string) ([]schema.FileChange, error) {
	args := m.Called(ctx, fullName, sha)
	files, _ := args.Get(0).([]schema.FileChange)
	return files, args.Error(1)
}

// GetRepoFullNameByID implements the HostingClient interface.
func (m *MockHostingClient) GetRepoFullNameByID(ctx context.Context, providerID int64) (string, error) {
	args := m.Called(ctx, providerID)
	return args.String(0), args.Error(1)
}

// MockSummarizer is a mock implementation of Summarizer for testing.
type MockSummarizer struct {
	mock.Mock
}

var _ Summarizer = &MockSummarizer{} // Compile-time check

// SummarizeShipped implements the Summarizer interface.
func (m *MockSummarizer) SummarizeShipped(ctx context.Context, input schema.ShippedInput) (schema.ShippedSummary, error) {
	args := m.Called(ctx, input)
	summary, _ := args.Get(0).(schema.ShippedSummary)
	return summary, args.Error(1)
}
