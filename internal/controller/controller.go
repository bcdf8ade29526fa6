// Package controller validates user input and forwards ledger operations to
// the model. It owns the active filter and pushes filter results back to the
// model as matched indices.
package controller

import (
	"log/slog"

	"tracker/internal/core"
	"tracker/internal/filter"
	"tracker/internal/model"
)

// View is the user-facing surface the controller reports messages to.
type View interface {
	ShowMessage(msg string)
}

type Controller struct {
	model  *model.Model
	view   View
	filter filter.TransactionFilter
}

func New(m *model.Model, v View) *Controller {
	return &Controller{model: m, view: v}
}

// SetFilter replaces the active filter. A nil filter clears it.
func (c *Controller) SetFilter(f filter.TransactionFilter) {
	c.filter = f
}

// AddTransaction validates the input, builds the transaction and delegates
// to the model. It reports validation failure as false rather than an
// error; the model keeps its own error-based contract for invalid
// arguments.
func (c *Controller) AddTransaction(amount core.Money, category string) bool {
	if !core.IsValidAmount(amount) || !core.IsValidCategory(category) {
		return false
	}
	t := core.Transaction{Amount: amount, Category: category}
	if err := c.model.AddTransaction(t); err != nil {
		slog.Error("Failed to add transaction to model", "error", err)
		return false
	}
	return true
}

// ApplyFilter runs the active filter over the current transaction list and
// pushes the matching positions to the model. Each filtered transaction is
// mapped to its first occurrence in the full list, so duplicate entries
// collapse to a single index. Without an active filter the model is left
// untouched and the view is told so.
func (c *Controller) ApplyFilter() {
	if c.filter == nil {
		if c.view != nil {
			c.view.ShowMessage("No filter applied")
		}
		return
	}
	txs := c.model.Transactions()
	matched := c.filter.Filter(txs)
	indices := make([]int, 0, len(matched))
	for _, t := range matched {
		if idx := indexOf(txs, t); idx >= 0 {
			indices = append(indices, idx)
		}
	}
	if err := c.model.SetMatchedFilterIndices(indices); err != nil {
		// Indices were computed from the same list, so this only fires if
		// a filter returns transactions that were never in the input.
		slog.Error("Failed to set matched filter indices", "error", err)
	}
}

// UndoTransaction removes the transaction at rowIndex via the model. Out of
// bounds indices are a no-op; the return value tells the caller which case
// occurred.
func (c *Controller) UndoTransaction(rowIndex int) bool {
	txs := c.model.Transactions()
	if rowIndex < 0 || rowIndex >= len(txs) {
		return false
	}
	c.model.RemoveTransaction(txs[rowIndex])
	return true
}

func indexOf(txs []core.Transaction, t core.Transaction) int {
	for i, cur := range txs {
		if cur == t {
			return i
		}
	}
	return -1
}
