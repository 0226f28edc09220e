// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/commitpulse/schema"
)

// HostingClient defines the operations needed against a source-code hosting provider.
// This allows the fetch and enrichment logic to be tested without network access.
type HostingClient interface {
	// --- Commit Listing ---

	// ListCommits returns up to limit commits of branch committed after since.
	// An empty branch means the repository's default branch.
	// A moved repository is reported as *RepoRenamedError.
	ListCommits(ctx context.Context, fullName, branch string, since time.Time, limit int) ([]schema.CommitRecord, error)

	// --- Commit Detail ---

	// GetCommitStats returns the line and file change counts of a commit.
	GetCommitStats(ctx context.Context, fullName, sha string) (schema.CommitStats, error)

	// GetCommitFiles returns the files touched by a commit.
	GetCommitFiles(ctx context.Context, fullName, sha string) ([]schema.FileChange, error)

	// --- Repository Metadata ---

	// GetRepoFullNameByID resolves the current owner/name of a repository by its stable provider id.
	GetRepoFullNameByID(ctx context.Context, providerID int64) (string, error)
}

// ClientFactory builds a HostingClient authenticated with the given token.
type ClientFactory func(ctx context.Context, token string) HostingClient

// CredentialStore provides access to stored hosting credentials.
type CredentialStore interface {
	// GetDecryptedToken returns the user's token, or "" when none is stored or it cannot be opened.
	GetDecryptedToken(ctx context.Context, userID string) (string, error)

	// GetOrgAdminsWithTokens lists owner and admin members of the organization that
	// have a stored credential, in membership order.
	GetOrgAdminsWithTokens(ctx context.Context, orgID string) ([]schema.OrgMember, error)
}

// RepoStore provides access to repositories linked to products.
type RepoStore interface {
	ListLinkedRepos(ctx context.Context, productID string) ([]schema.RepositoryRef, error)
	UpdateFullName(ctx context.Context, repoID, newFullName string) error
}

// ProductStore provides access to products.
type ProductStore interface {
	// GetProduct returns nil when the product does not exist.
	GetProduct(ctx context.Context, productID string) (*schema.Product, error)

	// ListAccessibleProducts lists products in the organizations the user belongs to.
	// An empty orgID means every organization of the user.
	ListAccessibleProducts(ctx context.Context, userID, orgID string) ([]schema.Product, error)
}

// RegistryStore is the durable registry of products, repositories, members and credentials.
type RegistryStore interface {
	CredentialStore
	RepoStore
	ProductStore

	AddProduct(ctx context.Context, product schema.Product) (schema.Product, error)
	LinkRepo(ctx context.Context, repo schema.RepositoryRef) (schema.RepositoryRef, error)
	AddMember(ctx context.Context, member schema.OrgMember) error
	SetToken(ctx context.Context, userID, token string) error

	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// StatsCacheStore is the write-through cache of per-commit statistics.
// Entries are immutable: writing an existing key leaves it unchanged.
type StatsCacheStore interface {
	BulkGet(ctx context.Context, keys []schema.StatsKey) (map[schema.StatsKey]schema.CommitStats, error)
	BulkUpsert(ctx context.Context, entries []schema.StatsCacheEntry) error
	All(ctx context.Context) ([]schema.StatsCacheEntry, error)
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// NarrativeStore caches generated product narratives keyed by (product, period).
type NarrativeStore interface {
	GetByProductsPeriod(ctx context.Context, productIDs []string, period schema.Period) ([]schema.NarrativeRecord, error)
	Upsert(ctx context.Context, record schema.NarrativeRecord) error
	DeleteByProduct(ctx context.Context, productID string) error
	All(ctx context.Context) ([]schema.NarrativeRecord, error)
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// StoreManager defines the interface for managing the persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetStatsStore() StatsCacheStore
	GetNarrativeStore() NarrativeStore
	GetRegistryStore() RegistryStore
}

// Summarizer turns a product's commits into a short list of user-facing changes.
type Summarizer interface {
	SummarizeShipped(ctx context.Context, input schema.ShippedInput) (schema.ShippedSummary, error)
}
