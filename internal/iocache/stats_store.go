package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/commitpulse/internal/contract"
	"github.com/huangsam/commitpulse/schema"
)

// statsTable is the name of the table for commit statistics caching.
const statsTable = "commit_stats_cache"

// Batch sizes keep every statement well under the bound-parameter limits of all backends.
const (
	statsGetBatch    = 500
	statsUpsertBatch = 200
)

// StatsStoreImpl is the SQL-backed commit statistics cache.
type StatsStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.StatsCacheStore = &StatsStoreImpl{} // Compile-time check

// NewStatsStore opens the statistics cache and applies pending migrations.
// NoneBackend returns a store that misses on every read and drops every write.
func NewStatsStore(backend schema.DatabaseBackend, connStr string) (*StatsStoreImpl, error) {
	if backend == schema.NoneBackend {
		return &StatsStoreImpl{backend: backend}, nil
	}
	if err := migrateUp(CacheMigrations, backend, connStr); err != nil {
		return nil, err
	}
	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}
	return &StatsStoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// BulkGet looks up many keys at once. Missing keys are absent from the result.
func (s *StatsStoreImpl) BulkGet(ctx context.Context, keys []schema.StatsKey) (map[schema.StatsKey]schema.CommitStats, error) {
	found := make(map[schema.StatsKey]schema.CommitStats, len(keys))
	if s.db == nil || len(keys) == 0 {
		return found, nil
	}

	// Group by repository so every query can use the primary key prefix
	byRepo := make(map[string][]string)
	var order []string
	for _, k := range keys {
		if _, ok := byRepo[k.FullName]; !ok {
			order = append(order, k.FullName)
		}
		byRepo[k.FullName] = append(byRepo[k.FullName], k.SHA)
	}

	table := quoteTableName(statsTable, s.backend)
	for _, fullName := range order {
		shas := byRepo[fullName]
		for start := 0; start < len(shas); start += statsGetBatch {
			end := min(start+statsGetBatch, len(shas))
			chunk := shas[start:end]

			query := fmt.Sprintf(
				"SELECT commit_sha, additions, deletions, files_changed FROM %s WHERE repository_full_name = ? AND commit_sha IN (%s)",
				table, inList(len(chunk)))
			args := make([]any, 0, len(chunk)+1)
			args = append(args, fullName)
			for _, sha := range chunk {
				args = append(args, sha)
			}

			if err := s.scanStats(ctx, rebind(s.backend, query), args, fullName, found); err != nil {
				return nil, err
			}
		}
	}
	return found, nil
}

func (s *StatsStoreImpl) scanStats(ctx context.Context, query string, args []any, fullName string, into map[schema.StatsKey]schema.CommitStats) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query commit stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var sha string
		var st schema.CommitStats
		if err := rows.Scan(&sha, &st.Additions, &st.Deletions, &st.FilesChanged); err != nil {
			return fmt.Errorf("failed to scan commit stats: %w", err)
		}
		into[schema.StatsKey{FullName: fullName, SHA: sha}] = st
	}
	return rows.Err()
}

// BulkUpsert inserts entries, leaving existing keys untouched.
func (s *StatsStoreImpl) BulkUpsert(ctx context.Context, entries []schema.StatsCacheEntry) error {
	if s.db == nil || len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(entries); start += statsUpsertBatch {
		end := min(start+statsUpsertBatch, len(entries))
		chunk := entries[start:end]

		args := make([]any, 0, len(chunk)*6)
		for _, e := range chunk {
			created := e.CreatedAt
			if created.IsZero() {
				created = time.Now()
			}
			args = append(args, e.FullName, e.SHA, e.Additions, e.Deletions, e.FilesChanged, created.Unix())
		}
		query := rebind(s.backend, s.insertIgnoreQuery(len(chunk)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert commit stats: %w", err)
		}
	}
	return tx.Commit()
}

// insertIgnoreQuery returns the backend-specific insert that skips existing keys.
func (s *StatsStoreImpl) insertIgnoreQuery(rows int) string {
	table := quoteTableName(statsTable, s.backend)
	cols := "(repository_full_name, commit_sha, additions, deletions, files_changed, created_at)"
	values := placeholders(rows, 6)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT IGNORE INTO %s %s VALUES %s", table, cols, values)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("INSERT INTO %s %s VALUES %s ON CONFLICT (repository_full_name, commit_sha) DO NOTHING", table, cols, values)
	default: // SQLite
		return fmt.Sprintf("INSERT OR IGNORE INTO %s %s VALUES %s", table, cols, values)
	}
}

// All returns every cached entry ordered by key.
func (s *StatsStoreImpl) All(ctx context.Context) ([]schema.StatsCacheEntry, error) {
	if s.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(
		"SELECT repository_full_name, commit_sha, additions, deletions, files_changed, created_at FROM %s ORDER BY repository_full_name, commit_sha",
		quoteTableName(statsTable, s.backend))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query commit stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []schema.StatsCacheEntry
	for rows.Next() {
		var e schema.StatsCacheEntry
		var created int64
		if err := rows.Scan(&e.FullName, &e.SHA, &e.Additions, &e.Deletions, &e.FilesChanged, &created); err != nil {
			return nil, fmt.Errorf("failed to scan commit stats: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetStatus returns status information about the stats store.
func (s *StatsStoreImpl) GetStatus() (schema.CacheStatus, error) {
	return tableStatus(s.db, s.backend, s.connStr, statsTable, "created_at")
}

// Close closes the underlying DB connection.
func (s *StatsStoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
