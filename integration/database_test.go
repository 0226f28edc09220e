//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/commitpulse/internal/iocache"
	"github.com/huangsam/commitpulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startMySQL starts a MySQL container and returns its connection string.
func startMySQL(t *testing.T) string {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "commitpulse",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mysqlC.Terminate(ctx) })

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	return fmt.Sprintf("root:secret123@tcp(%s:%s)/commitpulse?parseTime=true", host, port.Port())
}

// startPostgres starts a PostgreSQL container and returns its connection string.
func startPostgres(t *testing.T) string {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
}

// exerciseStores runs the same store round trips against one backend.
func exerciseStores(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	ctx := context.Background()

	stats, err := iocache.NewStatsStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = stats.Close() }()

	key := schema.StatsKey{FullName: "acme/web", SHA: "abc123"}
	require.NoError(t, stats.BulkUpsert(ctx, []schema.StatsCacheEntry{
		{StatsKey: key, CommitStats: schema.CommitStats{Additions: 5, Deletions: 2, FilesChanged: 1}},
	}))
	// Existing keys are never overwritten
	require.NoError(t, stats.BulkUpsert(ctx, []schema.StatsCacheEntry{
		{StatsKey: key, CommitStats: schema.CommitStats{Additions: 99}},
	}))
	found, err := stats.BulkGet(ctx, []schema.StatsKey{key, {FullName: "acme/web", SHA: "missing"}})
	require.NoError(t, err)
	assert.Equal(t, map[schema.StatsKey]schema.CommitStats{key: {Additions: 5, Deletions: 2, FilesChanged: 1}}, found)

	narratives, err := iocache.NewNarrativeStore(backend, connStr)
	require.NoError(t, err)
	defer func() { _ = narratives.Close() }()

	record := schema.NarrativeRecord{
		ProductID:             "web",
		Period:                schema.Period7d,
		Items:                 []schema.ShippedItem{{Category: schema.CategoryFeature, Description: "Dark mode"}},
		HasSignificantChanges: true,
		TotalCommits:          3,
		GeneratedAt:           time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, narratives.Upsert(ctx, record))
	record.TotalCommits = 4
	require.NoError(t, narratives.Upsert(ctx, record))

	got, err := narratives.GetByProductsPeriod(ctx, []string{"web"}, schema.Period7d)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].TotalCommits)
	assert.Equal(t, record.Items, got[0].Items)

	require.NoError(t, narratives.DeleteByProduct(ctx, "web"))
	got, err = narratives.GetByProductsPeriod(ctx, []string{"web"}, schema.Period7d)
	require.NoError(t, err)
	assert.Empty(t, got)

	registry, err := iocache.NewRegistryStore(backend, connStr, "integration-secret")
	require.NoError(t, err)
	defer func() { _ = registry.Close() }()

	product, err := registry.AddProduct(ctx, schema.Product{Name: "Web", OrganizationID: "acme"})
	require.NoError(t, err)
	require.NoError(t, registry.AddMember(ctx, schema.OrgMember{OrganizationID: "acme", UserID: "alice", Role: schema.RoleOwner}))
	require.NoError(t, registry.SetToken(ctx, "alice", "ghp_example"))

	token, err := registry.GetDecryptedToken(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "ghp_example", token)

	products, err := registry.ListAccessibleProducts(ctx, "alice", "")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)

	repo, err := registry.LinkRepo(ctx, schema.RepositoryRef{ProductID: product.ID, FullName: "acme/web", ProviderID: 7})
	require.NoError(t, err)
	require.NoError(t, registry.UpdateFullName(ctx, repo.ID, "acme/web-app"))
	repos, err := registry.ListLinkedRepos(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "acme/web-app", repos[0].FullName)

	admins, err := registry.GetOrgAdminsWithTokens(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "alice", admins[0].UserID)
}

func TestStoresWithMySQL(t *testing.T) {
	exerciseStores(t, schema.MySQLBackend, startMySQL(t))
}

func TestStoresWithPostgres(t *testing.T) {
	exerciseStores(t, schema.PostgreSQLBackend, startPostgres(t))
}

// TestCLIWithPostgres runs the cache and registry commands against PostgreSQL.
func TestCLIWithPostgres(t *testing.T) {
	connStr := startPostgres(t)
	env := []string{
		"COMMITPULSE_CACHE_BACKEND=postgresql",
		"COMMITPULSE_CACHE_DB_CONNECT=" + connStr,
		"COMMITPULSE_REGISTRY_BACKEND=postgresql",
		"COMMITPULSE_REGISTRY_DB_CONNECT=" + connStr,
		"COMMITPULSE_SECRET_KEY=integration-secret",
	}

	_, err := runCommand(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runCommand(t, env, "registry", "member", "add", "--org", "acme", "--user", "alice")
	require.NoError(t, err)
	out, err := runCommand(t, env, "dashboard", "--user", "alice", "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"period": "7d"`)
	_, err = runCommand(t, env, "cache", "status")
	require.NoError(t, err)
	_, err = runCommand(t, env, "registry", "status")
	require.NoError(t, err)
}
