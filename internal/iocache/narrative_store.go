package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// narrativeTable is the name of the table for shipped narrative caching.
const narrativeTable = "shipped_summaries"

const narrativeColumns = "product_id, period_key, items, has_significant_changes, total_commits, total_additions, total_deletions, last_activity_at, generated_at"

// NarrativeStoreImpl is the SQL-backed narrative cache.
type NarrativeStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.NarrativeStore = &NarrativeStoreImpl{} // Compile-time check

// NewNarrativeStore opens the narrative cache and applies pending migrations.
func NewNarrativeStore(backend schema.DatabaseBackend, connStr string) (*NarrativeStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &NarrativeStoreImpl{backend: backend}, nil
	}
	if err := migrateUp(CacheMigrations, backend, connStr); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}
	return &NarrativeStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// GetByProductsPeriod returns the cached narratives of the given products for one period.
func (s *NarrativeStoreImpl) GetByProductsPeriod(ctx context.Context, productIDs []string, period schema.Period) ([]schema.NarrativeRecord, error) {
	if s.db == nil || len(productIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE period_key = ? AND product_id IN (%s) ORDER BY product_id",
		narrativeColumns, quoteTableName(narrativeTable, s.backend), inList(len(productIDs)))
	args := make([]any, 0, len(productIDs)+1)
	args = append(args, string(period))
	for _, id := range productIDs {
		args = append(args, id)
	}
	return s.query(ctx, rebind(s.backend, query), args...)
}

// All returns every cached narrative.
func (s *NarrativeStoreImpl) All(ctx context.Context) ([]schema.NarrativeRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY product_id, period_key", narrativeColumns, quoteTableName(narrativeTable, s.backend))
	return s.query(ctx, query)
}

func (s *NarrativeStoreImpl) query(ctx context.Context, query string, args ...any) ([]schema.NarrativeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query narratives: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.NarrativeRecord
	for rows.Next() {
		var (
			r          schema.NarrativeRecord
			period     string
			items      string
			lastActive sql.NullInt64
			generated  int64
		)
		if err := rows.Scan(&r.ProductID, &period, &items, &r.HasSignificantChanges,
			&r.TotalCommits, &r.TotalAdditions, &r.TotalDeletions, &lastActive, &generated); err != nil {
			return nil, fmt.Errorf("failed to scan narrative: %w", err)
		}
		r.Period = schema.Period(period)
		if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
			return nil, fmt.Errorf("failed to decode narrative items for %s: %w", r.ProductID, err)
		}
		if r.Items == nil {
			r.Items = []schema.ShippedItem{}
		}
		if lastActive.Valid {
			t := time.Unix(lastActive.Int64, 0).UTC()
			r.LastActivityAt = &t
		}
		r.GeneratedAt = time.Unix(generated, 0).UTC()
		records = append(records, r)
	}
	return records, rows.Err()
}

// Upsert writes the narrative for (product, period), replacing any previous one.
func (s *NarrativeStoreImpl) Upsert(ctx context.Context, record schema.NarrativeRecord) error {
	if s.db == nil {
		return nil
	}
	items := record.Items
	if items == nil {
		items = []schema.ShippedItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode narrative items: %w", err)
	}
	var lastActive any
	if record.LastActivityAt != nil {
		lastActive = record.LastActivityAt.Unix()
	}
	generated := record.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	_, err = s.db.ExecContext(ctx, s.upsertQuery(),
		record.ProductID, string(record.Period), string(payload), record.HasSignificantChanges,
		record.TotalCommits, record.TotalAdditions, record.TotalDeletions, lastActive, generated.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert narrative for %s: %w", record.ProductID, err)
	}
	return nil
}

// upsertQuery returns the UPSERT query for the backend.
func (s *NarrativeStoreImpl) upsertQuery() string {
	table := quoteTableName(narrativeTable, s.backend)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE items = new.items, has_significant_changes = new.has_significant_changes,
			total_commits = new.total_commits, total_additions = new.total_additions, total_deletions = new.total_deletions,
			last_activity_at = new.last_activity_at, generated_at = new.generated_at`, table, narrativeColumns)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (product_id, period_key) DO UPDATE SET items = EXCLUDED.items,
			has_significant_changes = EXCLUDED.has_significant_changes, total_commits = EXCLUDED.total_commits,
			total_additions = EXCLUDED.total_additions, total_deletions = EXCLUDED.total_deletions,
			last_activity_at = EXCLUDED.last_activity_at, generated_at = EXCLUDED.generated_at`, table, narrativeColumns)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table, narrativeColumns)
	}
}

// DeleteByProduct removes every cached narrative of a product.
func (s *NarrativeStoreImpl) DeleteByProduct(ctx context.Context, productID string) error {
	if s.db == nil {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE product_id = ?", quoteTableName(narrativeTable, s.backend))
	if _, err := s.db.ExecContext(ctx, rebind(s.backend, query), productID); err != nil {
		return fmt.Errorf("failed to delete narratives for %s: %w", productID, err)
	}
	return nil
}

// GetStatus returns status information about the narrative store.
func (s *NarrativeStoreImpl) GetStatus() (schema.CacheStatus, error) {
	return tableStatus(s.db, s.backend, s.connStr, narrativeTable, "generated_at")
}

// Close closes the underlying DB connection.
func (s *NarrativeStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
