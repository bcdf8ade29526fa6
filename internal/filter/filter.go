// Package filter provides the filter capability the controller applies to
// narrow the displayed transaction list.
package filter

import (
	"strings"

	"tracker/internal/core"
)

// TransactionFilter maps an ordered transaction list to the ordered
// subsequence of matches.
type TransactionFilter interface {
	Filter(txs []core.Transaction) []core.Transaction
}

// ByCategory matches transactions whose category equals Category,
// case-insensitively.
type ByCategory struct {
	Category string
}

func (f ByCategory) Filter(txs []core.Transaction) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if strings.EqualFold(t.Category, f.Category) {
			out = append(out, t)
		}
	}
	return out
}

// ByAmountRange matches transactions whose amount lies within the inclusive
// cents bounds. A nil bound leaves that end open.
type ByAmountRange struct {
	MinCents *int64
	MaxCents *int64
}

func (f ByAmountRange) Filter(txs []core.Transaction) []core.Transaction {
	var out []core.Transaction
	for _, t := range txs {
		if f.MinCents != nil && t.Amount.Cents < *f.MinCents {
			continue
		}
		if f.MaxCents != nil && t.Amount.Cents > *f.MaxCents {
			continue
		}
		out = append(out, t)
	}
	return out
}
