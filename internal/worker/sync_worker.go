// Package worker mirrors durable ledger changes to the external
// spreadsheet, driven by AMQP events with a periodic sweep as backstop.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tracker/internal/amqp"
	"tracker/internal/sheets"
	"tracker/internal/storage"
)

// Store is the slice of the SQLite repository the worker needs.
type Store interface {
	Get(ctx context.Context, id int64) (*storage.Row, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.Row, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker pushes ledger rows from SQLite to the spreadsheet.
type SyncWorker struct {
	store     Store
	writer    sheets.LedgerWriter
	deleter   sheets.LedgerDeleter
	batchSize int
}

func NewSyncWorker(store Store, writer sheets.LedgerWriter, deleter sheets.LedgerDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncEvent loads the row named by the event and appends it to the
// spreadsheet. Rows that fail are marked so the periodic sweep does not
// retry them forever.
func (w *SyncWorker) HandleSyncEvent(ctx context.Context, event *amqp.Event) error {
	slog.InfoContext(ctx, "Processing sync event",
		"event_id", event.EventID, "id", event.ID)

	row, err := w.store.Get(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	if row.Synced {
		slog.InfoContext(ctx, "Row already synced, skipping", "id", event.ID)
		return nil
	}

	return w.syncRow(ctx, row)
}

// HandleDeleteEvent removes the spreadsheet row for a deleted transaction.
// The SQLite row is soft-deleted by the server, so the event carries the
// transaction data the sheet lookup may need.
func (w *SyncWorker) HandleDeleteEvent(ctx context.Context, event *amqp.Event) error {
	slog.InfoContext(ctx, "Processing delete event",
		"event_id", event.EventID, "id", event.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No sheet deleter configured, skipping", "id", event.ID)
		return nil
	}

	if err := w.deleter.DeleteTransaction(ctx, event.ID); err != nil {
		return fmt.Errorf("delete transaction from sheet: %w", err)
	}

	slog.InfoContext(ctx, "Deleted transaction from sheet", "id", event.ID)
	return nil
}

// ProcessPending syncs rows the event stream missed. This is the backstop
// for lost messages and worker downtime.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for i := range pending {
		if err := w.syncRow(ctx, &pending[i]); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction",
				"id", pending[i].ID, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck drains a larger pending batch once at worker start.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Startup sync check found pending transactions", "count", len(pending))

	for i := range pending {
		if err := w.syncRow(ctx, &pending[i]); err != nil {
			slog.ErrorContext(ctx, "Failed startup sync for transaction",
				"id", pending[i].ID, "error", err)
		}
	}

	return nil
}

func (w *SyncWorker) syncRow(ctx context.Context, row *storage.Row) error {
	ref, err := w.writer.AppendTransaction(ctx, row.ID, row.Transaction, row.CreatedAt)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, row.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", row.ID, "error", markErr)
		}
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	if err := w.store.MarkSynced(ctx, row.ID); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}

	slog.InfoContext(ctx, "Transaction synced to sheet",
		"id", row.ID, "row_ref", ref)
	return nil
}
