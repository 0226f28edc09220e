package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/internal/vault"
	"github.com/huangsam/commitpulse/schema"
)

// Registry table names.
const (
	productsTable    = "products"
	reposTable       = "repositories"
	membersTable     = "org_members"
	credentialsTable = "credentials"
)

// RegistryStoreImpl is the SQL-backed registry of products, repositories,
// organization members and sealed credentials.
type RegistryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
	vault   *vault.Vault // nil when no secret key is configured
}

var _ contract.RegistryStore = &RegistryStoreImpl{} // Compile-time check

// NewRegistryStore opens the registry and applies pending migrations.
// An empty secretKey leaves stored tokens unreadable and SetToken unavailable.
func NewRegistryStore(backend schema.DatabaseBackend, connStr, secretKey string) (*RegistryStoreImpl, error) {
	if backend == schema.NoneBackend {
		return nil, fmt.Errorf("registry requires a database backend")
	}
	if err := migrateUp(RegistryMigrations, backend, connStr); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr, contract.GetRegistryDBFilePath())
	if err != nil {
		return nil, err
	}

	store := &RegistryStoreImpl{db: db, backend: backend, connStr: connStr}
	if secretKey != "" {
		v, err := vault.New(secretKey)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		store.vault = v
	}
	return store, nil
}

func (s *RegistryStoreImpl) table(name string) string {
	return quoteTableName(name, s.backend)
}

func (s *RegistryStoreImpl) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.db.ExecContext(ctx, rebind(s.backend, query), args...)
	return err
}

// --- Credentials ---

// GetDecryptedToken returns the user's token. A missing row yields "", and so
// does a sealed token that cannot be opened with the configured key.
func (s *RegistryStoreImpl) GetDecryptedToken(ctx context.Context, userID string) (string, error) {
	query := fmt.Sprintf("SELECT sealed_token FROM %s WHERE user_id = ?", s.table(credentialsTable))
	var sealed string
	err := s.db.QueryRowContext(ctx, rebind(s.backend, query), userID).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential for %s: %w", userID, err)
	}

	if s.vault == nil {
		contract.LogWarn("Cannot open credential for "+userID, vault.ErrNoKey)
		return "", nil
	}
	token, err := s.vault.Open(sealed)
	if err != nil {
		contract.LogWarn("Cannot open credential for "+userID, err)
		return "", nil
	}
	return token, nil
}

// GetOrgAdminsWithTokens lists owners and admins holding a credential, earliest member first.
func (s *RegistryStoreImpl) GetOrgAdminsWithTokens(ctx context.Context, orgID string) ([]schema.OrgMember, error) {
	query := fmt.Sprintf(`SELECT m.organization_id, m.user_id, m.role FROM %s m
		JOIN %s c ON c.user_id = m.user_id
		WHERE m.organization_id = ? AND m.role IN (?, ?)
		ORDER BY m.joined_at, m.user_id`, s.table(membersTable), s.table(credentialsTable))
	rows, err := s.db.QueryContext(ctx, rebind(s.backend, query), orgID, schema.RoleOwner, schema.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to query org admins: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var members []schema.OrgMember
	for rows.Next() {
		var m schema.OrgMember
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Role); err != nil {
			return nil, fmt.Errorf("failed to scan org member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// SetToken seals and stores the user's token, replacing any previous one.
func (s *RegistryStoreImpl) SetToken(ctx context.Context, userID, token string) error {
	if s.vault == nil {
		return vault.ErrNoKey
	}
	sealed, err := s.vault.Seal(token)
	if err != nil {
		return err
	}

	var query string
	table := s.table(credentialsTable)
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (user_id, sealed_token, updated_at) VALUES (?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE sealed_token = new.sealed_token, updated_at = new.updated_at`, table)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (user_id, sealed_token, updated_at) VALUES (?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET sealed_token = EXCLUDED.sealed_token, updated_at = EXCLUDED.updated_at`, table)
	default: // SQLite
		query = fmt.Sprintf(`INSERT OR REPLACE INTO %s (user_id, sealed_token, updated_at) VALUES (?, ?, ?)`, table)
	}
	if err := s.exec(ctx, query, userID, sealed, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to store credential for %s: %w", userID, err)
	}
	return nil
}

// --- Organization Members ---

// AddMember records a membership. Existing memberships keep their role and join time.
func (s *RegistryStoreImpl) AddMember(ctx context.Context, member schema.OrgMember) error {
	if member.Role == "" {
		member.Role = schema.RoleMember
	}
	table := s.table(membersTable)
	cols := "(organization_id, user_id, role, joined_at)"
	var query string
	switch s.backend {
	case schema.MySQLBackend:
		query = fmt.Sprintf("INSERT IGNORE INTO %s %s VALUES (?, ?, ?, ?)", table, cols)
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf("INSERT INTO %s %s VALUES (?, ?, ?, ?) ON CONFLICT (organization_id, user_id) DO NOTHING", table, cols)
	default: // SQLite
		query = fmt.Sprintf("INSERT OR IGNORE INTO %s %s VALUES (?, ?, ?, ?)", table, cols)
	}
	// Nanoseconds keep the join order stable for members added in the same second
	if err := s.exec(ctx, query, member.OrganizationID, member.UserID, member.Role, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to add member %s: %w", member.UserID, err)
	}
	return nil
}

// --- Products ---

// AddProduct inserts a product, assigning an id when none is given.
func (s *RegistryStoreImpl) AddProduct(ctx context.Context, product schema.Product) (schema.Product, error) {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	query := fmt.Sprintf("INSERT INTO %s (id, name, color, organization_id, created_at) VALUES (?, ?, ?, ?, ?)", s.table(productsTable))
	if err := s.exec(ctx, query, product.ID, product.Name, product.Color, product.OrganizationID, time.Now().Unix()); err != nil {
		return schema.Product{}, fmt.Errorf("failed to add product %s: %w", product.Name, err)
	}
	return product, nil
}

// GetProduct returns nil when the product does not exist.
func (s *RegistryStoreImpl) GetProduct(ctx context.Context, productID string) (*schema.Product, error) {
	query := fmt.Sprintf("SELECT id, name, color, organization_id FROM %s WHERE id = ?", s.table(productsTable))
	var p schema.Product
	err := s.db.QueryRowContext(ctx, rebind(s.backend, query), productID).Scan(&p.ID, &p.Name, &p.Color, &p.OrganizationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product %s: %w", productID, err)
	}
	return &p, nil
}

// ListAccessibleProducts lists products of the organizations the user belongs to.
func (s *RegistryStoreImpl) ListAccessibleProducts(ctx context.Context, userID, orgID string) ([]schema.Product, error) {
	query := fmt.Sprintf(`SELECT p.id, p.name, p.color, p.organization_id FROM %s p
		JOIN %s m ON m.organization_id = p.organization_id
		WHERE m.user_id = ?`, s.table(productsTable), s.table(membersTable))
	args := []any{userID}
	if orgID != "" {
		query += " AND p.organization_id = ?"
		args = append(args, orgID)
	}
	query += " ORDER BY p.created_at, p.id"

	rows, err := s.db.QueryContext(ctx, rebind(s.backend, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []schema.Product
	for rows.Next() {
		var p schema.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.OrganizationID); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// --- Repositories ---

// LinkRepo links a repository to a product, assigning an id when none is given.
func (s *RegistryStoreImpl) LinkRepo(ctx context.Context, repo schema.RepositoryRef) (schema.RepositoryRef, error) {
	if repo.ID == "" {
		repo.ID = uuid.NewString()
	}
	if repo.Name == "" {
		repo.Name = repo.Repo()
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, product_id, name, full_name, default_branch, provider_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, s.table(reposTable))
	if err := s.exec(ctx, query, repo.ID, repo.ProductID, repo.Name, repo.FullName, repo.DefaultBranch, repo.ProviderID, time.Now().Unix()); err != nil {
		return schema.RepositoryRef{}, fmt.Errorf("failed to link repository %s: %w", repo.FullName, err)
	}
	return repo, nil
}

// ListLinkedRepos lists the repositories of a product in link order.
func (s *RegistryStoreImpl) ListLinkedRepos(ctx context.Context, productID string) ([]schema.RepositoryRef, error) {
	query := fmt.Sprintf(`SELECT id, product_id, name, full_name, default_branch, provider_id FROM %s
		WHERE product_id = ? ORDER BY created_at, id`, s.table(reposTable))
	rows, err := s.db.QueryContext(ctx, rebind(s.backend, query), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query repositories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var repos []schema.RepositoryRef
	for rows.Next() {
		var r schema.RepositoryRef
		if err := rows.Scan(&r.ID, &r.ProductID, &r.Name, &r.FullName, &r.DefaultBranch, &r.ProviderID); err != nil {
			return nil, fmt.Errorf("failed to scan repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// UpdateFullName records the new owner/name of a moved repository.
func (s *RegistryStoreImpl) UpdateFullName(ctx context.Context, repoID, newFullName string) error {
	query := fmt.Sprintf("UPDATE %s SET full_name = ? WHERE id = ?", s.table(reposTable))
	if err := s.exec(ctx, query, newFullName, repoID); err != nil {
		return fmt.Errorf("failed to update repository %s: %w", repoID, err)
	}
	return nil
}

// GetStatus returns status information about the product registry.
func (s *RegistryStoreImpl) GetStatus() (schema.CacheStatus, error) {
	return tableStatus(s.db, s.backend, s.connStr, productsTable, "created_at")
}

// Close closes the underlying DB connection.
func (s *RegistryStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
