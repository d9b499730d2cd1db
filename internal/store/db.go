package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"go-data-explorer/internal/model"
)

var (
	db   *sql.DB
	dbMu sync.RWMutex
)

// ErrNotInitialized is returned when the database has not been opened.
var ErrNotInitialized = errors.New("store: database not initialized")

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("store: invalid table name")

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Initialize DB connection
func InitDB(dbPath string) error {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	if dbPath == ":memory:" || strings.Contains(dbPath, "mode=memory") {
		// every pooled connection would otherwise see its own empty database
		conn.SetMaxOpenConns(1)
	}

	exportTable := `
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_id TEXT,
		table_name TEXT,
		strategy TEXT,
		record_count INTEGER,
		created_at DATETIME
	);
	`
	if _, err := conn.Exec(exportTable); err != nil {
		conn.Close()
		return err
	}

	dbMu.Lock()
	if db != nil {
		db.Close()
	}
	db = conn
	dbMu.Unlock()
	return nil
}

// Close closes the connection opened by InitDB.
func Close() error {
	dbMu.Lock()
	defer dbMu.Unlock()
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

func handle() (*sql.DB, error) {
	dbMu.RLock()
	defer dbMu.RUnlock()
	if db == nil {
		return nil, ErrNotInitialized
	}
	return db, nil
}

// SaveDataset writes every record of a snapshot into table, creating it if
// needed. Rows of the same snapshot are replaced. Absent values become NULL.
func SaveDataset(ctx context.Context, table string, snap model.Snapshot) (int, error) {
	if !identifierRe.MatchString(table) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	conn, err := handle()
	if err != nil {
		return 0, err
	}

	columns := snap.Data.Header
	if len(columns) == 0 {
		columns = snap.Data.Schema()
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	defs := []string{"snapshot_id TEXT", "row_index INTEGER"}
	for _, c := range columns {
		defs = append(defs, quoteIdent(c)+" NUMERIC")
	}
	createStmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return 0, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE snapshot_id = ?", quoteIdent(table)), snap.ID); err != nil {
		return 0, fmt.Errorf("failed to clear previous rows: %w", err)
	}

	names := []string{"snapshot_id", "row_index"}
	marks := []string{"?", "?"}
	for _, c := range columns {
		names = append(names, quoteIdent(c))
		marks = append(marks, "?")
	}
	insert, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(names, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	count := 0
	for i, rec := range snap.Data.Records {
		args := make([]interface{}, 0, len(columns)+2)
		args = append(args, snap.ID, i)
		for _, c := range columns {
			v := rec[c]
			if v.IsMissing() {
				args = append(args, nil)
			} else {
				args = append(args, v.Interface())
			}
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return count, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
		count++
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO exports (snapshot_id, table_name, strategy, record_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, table, string(snap.Strategy), count, time.Now().UTC()); err != nil {
		return count, fmt.Errorf("failed to record export: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit export: %w", err)
	}
	return count, nil
}

// ListExports returns all recorded exports with basic info
func ListExports(ctx context.Context) ([]map[string]interface{}, error) {
	conn, err := handle()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `SELECT snapshot_id, table_name, strategy, record_count, created_at FROM exports ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exports := []map[string]interface{}{}
	for rows.Next() {
		var snapshotID, table, strategy string
		var count int
		var createdAt time.Time
		if err := rows.Scan(&snapshotID, &table, &strategy, &count, &createdAt); err != nil {
			return nil, err
		}
		exports = append(exports, map[string]interface{}{
			"snapshotId":  snapshotID,
			"table":       table,
			"strategy":    strategy,
			"recordCount": count,
			"createdAt":   createdAt,
		})
	}
	return exports, rows.Err()
}

// CountRows returns the number of rows stored for a snapshot in table.
func CountRows(ctx context.Context, table, snapshotID string) (int, error) {
	if !identifierRe.MatchString(table) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	conn, err := handle()
	if err != nil {
		return 0, err
	}
	var n int
	err = conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE snapshot_id = ?", quoteIdent(table)), snapshotID).Scan(&n)
	return n, err
}

// CountNulls returns how many rows of a snapshot have NULL in column.
func CountNulls(ctx context.Context, table, column, snapshotID string) (int, error) {
	if !identifierRe.MatchString(table) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	conn, err := handle()
	if err != nil {
		return 0, err
	}
	var n int
	err = conn.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE snapshot_id = ? AND %s IS NULL", quoteIdent(table), quoteIdent(column)),
		snapshotID).Scan(&n)
	return n, err
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
