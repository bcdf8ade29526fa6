// Package model implements the observable transaction ledger: an ordered
// list of transactions, the indices matched by the last applied filter, and
// a registry of listeners notified synchronously after every mutation.
//
// The model is not safe for concurrent use. Callers on concurrent edges
// serialize access; see services.Ledger.
package model

import (
	"errors"
	"fmt"

	"tracker/internal/core"
)

// Listener receives a synchronous callback after every model mutation.
// Listener values must be comparable; pointer implementations satisfy this.
type Listener interface {
	Update(m *Model)
}

var (
	ErrEmptyTransaction = errors.New("transaction must be non-empty")
	ErrNilIndices       = errors.New("matched filter indices must be non-nil")
	ErrIndexOutOfRange  = errors.New("matched filter index out of range")
)

type Model struct {
	transactions         []core.Transaction
	matchedFilterIndices []int
	listeners            []Listener
}

func New() *Model {
	return &Model{}
}

// AddTransaction appends t to the ledger. The previous filter result is
// positional, so it is invalidated by the mutation.
func (m *Model) AddTransaction(t core.Transaction) error {
	if t.IsZero() {
		return ErrEmptyTransaction
	}
	m.transactions = append(m.transactions, t)
	m.matchedFilterIndices = nil
	m.stateChanged()
	return nil
}

// RemoveTransaction removes the first occurrence of t. When t is not
// present the list is left untouched, but listeners are still notified;
// this mirrors plain list-removal semantics and keeps the mutation path
// uniform for observers.
func (m *Model) RemoveTransaction(t core.Transaction) {
	for i, cur := range m.transactions {
		if cur == t {
			m.transactions = append(m.transactions[:i], m.transactions[i+1:]...)
			break
		}
	}
	m.matchedFilterIndices = nil
	m.stateChanged()
}

// Transactions returns a copy of the ledger in insertion order.
func (m *Model) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// SetMatchedFilterIndices replaces the matched filter indices with a copy of
// indices. Every index must reference a valid position in the current
// transaction list; on error the prior state is left unchanged.
func (m *Model) SetMatchedFilterIndices(indices []int) error {
	if indices == nil {
		return ErrNilIndices
	}
	for _, idx := range indices {
		if idx < 0 || idx >= len(m.transactions) {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, idx, len(m.transactions))
		}
	}
	m.matchedFilterIndices = make([]int, len(indices))
	copy(m.matchedFilterIndices, indices)
	m.stateChanged()
	return nil
}

// MatchedFilterIndices returns a copy of the current matched filter indices.
func (m *Model) MatchedFilterIndices() []int {
	out := make([]int, len(m.matchedFilterIndices))
	copy(out, m.matchedFilterIndices)
	return out
}

// Register adds listener to the notification list. It returns true when the
// listener is non-nil and not already registered.
func (m *Model) Register(listener Listener) bool {
	if listener == nil || m.ContainsListener(listener) {
		return false
	}
	m.listeners = append(m.listeners, listener)
	return true
}

func (m *Model) NumListeners() int {
	return len(m.listeners)
}

func (m *Model) ContainsListener(listener Listener) bool {
	for _, l := range m.listeners {
		if l == listener {
			return true
		}
	}
	return false
}

// stateChanged notifies every registered listener, in registration order.
func (m *Model) stateChanged() {
	for _, l := range m.listeners {
		l.Update(m)
	}
}
