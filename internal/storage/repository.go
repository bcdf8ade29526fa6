// Package storage persists the ledger in SQLite so the in-memory model can
// be rebuilt across restarts, and tracks which rows still need to be synced
// to the external spreadsheet.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tracker/internal/core"

	_ "modernc.org/sqlite"
)

// Row is a persisted transaction with its database identity and sync state.
type Row struct {
	ID          int64
	Transaction core.Transaction
	CreatedAt   time.Time
	Synced      bool
	SyncError   bool
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert stores a new ledger transaction and returns its row ID.
func (r *SQLiteRepository) Insert(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (amount_cents, category) VALUES (?, ?)`,
		t.Amount.Cents, t.Category)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)

	return id, nil
}

// SoftDelete marks a transaction as deleted without losing its history.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted = 1 WHERE id = ? AND deleted = 0`, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d not found or already deleted", id)
	}

	slog.InfoContext(ctx, "Transaction soft deleted", "id", id)
	return nil
}

// ListActive returns every non-deleted transaction in insertion order.
func (r *SQLiteRepository) ListActive(ctx context.Context) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, created_at, synced, sync_error
		 FROM transactions WHERE deleted = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active transactions: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Get returns a single transaction by ID, deleted or not.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*Row, error) {
	var row Row
	err := r.db.QueryRowContext(ctx,
		`SELECT id, amount_cents, category, created_at, synced, sync_error
		 FROM transactions WHERE id = ?`, id).
		Scan(&row.ID, &row.Transaction.Amount.Cents, &row.Transaction.Category,
			&row.CreatedAt, &row.Synced, &row.SyncError)
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &row, nil
}

// GetPendingSync returns up to limit transactions that still need to reach
// the spreadsheet. Rows that already failed are excluded so one bad row
// cannot starve the queue.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, created_at, synced, sync_error
		 FROM transactions
		 WHERE deleted = 0 AND synced = 0 AND sync_error = 0
		 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// MarkSynced marks a transaction as successfully synced.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a transaction as having failed to sync.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.Transaction.Amount.Cents,
			&row.Transaction.Category, &row.CreatedAt, &row.Synced, &row.SyncError); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return out, nil
}
