package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/commitpulse/schema"
)

// tableStatus collects entry counts, entry age and size of one table.
// tsColumn must hold unix seconds.
func tableStatus(db *sql.DB, backend schema.DatabaseBackend, connStr, table, tsColumn string) (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(backend),
		Table:     table,
		Connected: db != nil,
	}

	if backend == schema.NoneBackend || db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(table, backend)

	// Get total entries
	row := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	// Get newest and oldest entry times
	var lastTs, oldestTs int64
	row = db.QueryRow(fmt.Sprintf("SELECT MAX(%s), MIN(%s) FROM %s", tsColumn, tsColumn, quotedTableName))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	// Fallback rough estimate if the size query fails
	estimate := int64(status.TotalEntries) * 200

	switch backend {
	case schema.SQLiteBackend:
		// SQLite reports the whole file
		row = db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = estimate
		}

	case schema.MySQLBackend:
		status.TableSizeBytes = estimate
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		row = db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", cfg.DBName, table)
		if err := row.Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = estimate
		}

	case schema.PostgreSQLBackend:
		row = db.QueryRow("SELECT pg_total_relation_size($1)", table)
		if err := row.Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = estimate
		}
	}

	return status, nil
}

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(status schema.CacheStatus) {
	fmt.Printf("Table: %s\n", status.Table)
	fmt.Printf("Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		fmt.Printf("Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
}
