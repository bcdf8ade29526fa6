// Package memory is an in-memory stand-in for the spreadsheet, used in
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tracker/internal/core"
	ports "tracker/internal/sheets"
)

type row struct {
	id        int64
	tx        core.Transaction
	createdAt time.Time
}

type Sheet struct {
	mu   sync.Mutex
	rows []row
}

var (
	_ ports.LedgerWriter  = (*Sheet)(nil)
	_ ports.LedgerDeleter = (*Sheet)(nil)
)

func New() *Sheet {
	return &Sheet{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (s *Sheet) AppendTransaction(_ context.Context, id int64, t core.Transaction, createdAt time.Time) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row{id: id, tx: t, createdAt: createdAt})
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// DeleteTransaction removes the row for id. Deleting an absent row is not
// an error, matching the real sheet adapter.
func (s *Sheet) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.id == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Len returns the number of stored rows.
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// Contains reports whether a row for id is present.
func (s *Sheet) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows {
		if r.id == id {
			return true
		}
	}
	return false
}
