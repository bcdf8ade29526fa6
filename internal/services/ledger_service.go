// Package services composes the controller with durable storage and event
// publication. The model and controller are single-threaded by contract;
// Ledger serializes every mutation behind one mutex so they can sit safely
// under concurrent HTTP handlers.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tracker/internal/amqp"
	"tracker/internal/controller"
	"tracker/internal/core"
	"tracker/internal/filter"
	"tracker/internal/model"
	"tracker/internal/storage"
)

var (
	ErrInvalidInput  = errors.New("invalid transaction input")
	ErrRowOutOfRange = errors.New("row index out of range")
)

// Store is the slice of the SQLite repository the ledger needs.
type Store interface {
	Insert(ctx context.Context, t core.Transaction) (int64, error)
	SoftDelete(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]storage.Row, error)
	Close() error
}

// Publisher emits ledger change events for the sync worker.
type Publisher interface {
	PublishEvent(ctx context.Context, event *amqp.Event) error
	Close() error
}

type Ledger struct {
	mu    sync.Mutex
	model *model.Model
	ctrl  *controller.Controller
	store Store
	pub   Publisher

	// Database row IDs aligned position-for-position with the model's
	// transaction list. A zero entry marks a session-only row whose
	// insert failed.
	ids []int64
}

// NewLedger wires the controller-managed model to storage and the event
// bus. store and pub may be nil; the ledger then runs in-memory only.
func NewLedger(m *model.Model, c *controller.Controller, store Store, pub Publisher) *Ledger {
	return &Ledger{model: m, ctrl: c, store: store, pub: pub}
}

// Load rebuilds the in-memory model from the persisted ledger. It is meant
// to run once at startup, before the HTTP surface accepts traffic.
func (l *Ledger) Load(ctx context.Context) error {
	if l.store == nil {
		return nil
	}

	rows, err := l.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, row := range rows {
		if err := l.model.AddTransaction(row.Transaction); err != nil {
			slog.WarnContext(ctx, "Skipping unloadable ledger row",
				"id", row.ID, "error", err)
			continue
		}
		l.ids = append(l.ids, row.ID)
	}

	slog.InfoContext(ctx, "Ledger hydrated from storage", "rows", len(l.ids))
	return nil
}

// AddTransaction validates and records a new expense. The model mutation is
// authoritative; storage and event publication are best-effort and never
// fail a request that the controller accepted.
func (l *Ledger) AddTransaction(ctx context.Context, amount core.Money, category string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.ctrl.AddTransaction(amount, category) {
		return ErrInvalidInput
	}

	var id int64
	if l.store != nil {
		var err error
		id, err = l.store.Insert(ctx, core.Transaction{Amount: amount, Category: category})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to persist transaction, keeping it session-only",
				"amount_cents", amount.Cents, "category", category, "error", err)
			id = 0
		}
	}
	l.ids = append(l.ids, id)

	if id != 0 && l.pub != nil {
		if err := l.pub.PublishEvent(ctx, amqp.NewSyncEvent(id)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync event", "id", id, "error", err)
		}
	}

	return nil
}

// Undo removes the transaction shown at rowIndex. Removal follows the
// model's first-occurrence semantics, so with duplicate entries the row
// that actually disappears may be an earlier equal one; the ID bookkeeping
// mirrors that to stay aligned.
func (l *Ledger) Undo(ctx context.Context, rowIndex int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	txs := l.model.Transactions()
	if rowIndex < 0 || rowIndex >= len(txs) {
		return ErrRowOutOfRange
	}
	removedAt := indexOfTx(txs, txs[rowIndex])
	removed := txs[removedAt]

	if !l.ctrl.UndoTransaction(rowIndex) {
		return ErrRowOutOfRange
	}

	id := l.ids[removedAt]
	l.ids = append(l.ids[:removedAt], l.ids[removedAt+1:]...)

	if id == 0 {
		return nil
	}
	if l.store != nil {
		if err := l.store.SoftDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to soft delete transaction", "id", id, "error", err)
		}
	}
	if l.pub != nil {
		event := amqp.NewDeleteEvent(id, removed.Amount.Cents, removed.Category)
		if err := l.pub.PublishEvent(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete event", "id", id, "error", err)
		}
	}

	return nil
}

// SetFilter replaces the controller's active filter.
func (l *Ledger) SetFilter(f filter.TransactionFilter) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ctrl.SetFilter(f)
}

// ApplyFilter runs the active filter and pushes matched indices to the model.
func (l *Ledger) ApplyFilter() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ctrl.ApplyFilter()
}

// Snapshot returns a consistent copy of the transaction list and matched
// filter indices.
func (l *Ledger) Snapshot() ([]core.Transaction, []int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.model.Transactions(), l.model.MatchedFilterIndices()
}

// Close closes storage and the event bus.
func (l *Ledger) Close() error {
	var errs []error

	if l.store != nil {
		if err := l.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if l.pub != nil {
		if err := l.pub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger: %v", errs)
	}
	return nil
}

func indexOfTx(txs []core.Transaction, t core.Transaction) int {
	for i, cur := range txs {
		if cur == t {
			return i
		}
	}
	return -1
}
