package sheets

import (
	"context"
	"time"

	"tracker/internal/core"
)

// Ports for outbound spreadsheet adapters.
type (
	// LedgerWriter mirrors a ledger row to the external sheet.
	LedgerWriter interface {
		AppendTransaction(ctx context.Context, id int64, t core.Transaction, createdAt time.Time) (rowRef string, err error)
	}

	// LedgerDeleter removes the sheet row for a deleted ledger entry.
	LedgerDeleter interface {
		DeleteTransaction(ctx context.Context, id int64) error
	}
)
