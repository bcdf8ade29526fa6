package controller

import (
	"testing"

	"tracker/internal/core"
	"tracker/internal/filter"
	"tracker/internal/model"
)

type fakeView struct {
	messages []string
}

func (v *fakeView) ShowMessage(msg string) {
	v.messages = append(v.messages, msg)
}

func tx(cents int64, category string) core.Transaction {
	return core.Transaction{Amount: core.Money{Cents: cents}, Category: category}
}

func TestController_AddTransaction(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		category string
		want     bool
	}{
		{name: "valid input", cents: 2500, category: "Food", want: true},
		{name: "zero amount", cents: 0, category: "Food", want: false},
		{name: "negative amount", cents: -100, category: "Food", want: false},
		{name: "empty category", cents: 2500, category: "", want: false},
		{name: "malformed category", cents: 2500, category: "Fo@od", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.New()
			c := New(m, &fakeView{})

			got := c.AddTransaction(core.Money{Cents: tt.cents}, tt.category)

			if got != tt.want {
				t.Errorf("AddTransaction = %v, want %v", got, tt.want)
			}
			wantCount := 0
			if tt.want {
				wantCount = 1
			}
			if n := len(m.Transactions()); n != wantCount {
				t.Errorf("transaction count = %d, want %d", n, wantCount)
			}
		})
	}
}

func TestController_ApplyFilter(t *testing.T) {
	setup := func(t *testing.T) (*model.Model, *Controller, *fakeView) {
		t.Helper()
		m := model.New()
		v := &fakeView{}
		c := New(m, v)
		if !c.AddTransaction(core.Money{Cents: 2500}, "Food") {
			t.Fatal("seed add failed")
		}
		if !c.AddTransaction(core.Money{Cents: 1000}, "Transport") {
			t.Fatal("seed add failed")
		}
		return m, c, v
	}

	t.Run("matching filter pushes indices", func(t *testing.T) {
		m, c, _ := setup(t)
		c.SetFilter(filter.ByCategory{Category: "Food"})

		c.ApplyFilter()

		got := m.MatchedFilterIndices()
		if len(got) != 1 || got[0] != 0 {
			t.Errorf("matched indices = %v, want [0]", got)
		}
	})

	t.Run("no matches pushes empty set", func(t *testing.T) {
		m, c, _ := setup(t)
		c.SetFilter(filter.ByCategory{Category: "Rent"})

		c.ApplyFilter()

		if got := m.MatchedFilterIndices(); len(got) != 0 {
			t.Errorf("matched indices = %v, want empty", got)
		}
	})

	t.Run("without filter reports message and leaves model alone", func(t *testing.T) {
		m, c, v := setup(t)
		if err := m.SetMatchedFilterIndices([]int{1}); err != nil {
			t.Fatal(err)
		}

		c.ApplyFilter()

		if len(v.messages) != 1 || v.messages[0] != "No filter applied" {
			t.Errorf("view messages = %v, want [No filter applied]", v.messages)
		}
		if got := m.MatchedFilterIndices(); len(got) != 1 || got[0] != 1 {
			t.Errorf("matched indices = %v, want [1]", got)
		}
	})

	t.Run("duplicate transactions collapse to first index", func(t *testing.T) {
		m, c, _ := setup(t)
		if !c.AddTransaction(core.Money{Cents: 2500}, "Food") {
			t.Fatal("seed add failed")
		}
		c.SetFilter(filter.ByCategory{Category: "Food"})

		c.ApplyFilter()

		// Rows 0 and 2 hold equal transactions; both map to index 0.
		got := m.MatchedFilterIndices()
		if len(got) != 2 || got[0] != 0 || got[1] != 0 {
			t.Errorf("matched indices = %v, want [0 0]", got)
		}
	})
}

func TestController_UndoTransaction(t *testing.T) {
	m := model.New()
	c := New(m, &fakeView{})
	if !c.AddTransaction(core.Money{Cents: 2500}, "Food") {
		t.Fatal("seed add failed")
	}
	if !c.AddTransaction(core.Money{Cents: 1000}, "Transport") {
		t.Fatal("seed add failed")
	}

	t.Run("out of bounds is a no-op", func(t *testing.T) {
		for _, idx := range []int{-1, 2, 100} {
			if c.UndoTransaction(idx) {
				t.Errorf("UndoTransaction(%d) = true, want false", idx)
			}
		}
		if n := len(m.Transactions()); n != 2 {
			t.Errorf("transaction count = %d, want 2", n)
		}
	})

	t.Run("removes the row", func(t *testing.T) {
		if !c.UndoTransaction(0) {
			t.Fatal("UndoTransaction(0) = false, want true")
		}
		txs := m.Transactions()
		if len(txs) != 1 || txs[0] != tx(1000, "Transport") {
			t.Errorf("remaining transactions = %v, want [Transport 10.00]", txs)
		}
	})
}
