package services

import (
	"context"
	"errors"
	"testing"

	"tracker/internal/amqp"
	"tracker/internal/controller"
	"tracker/internal/core"
	"tracker/internal/filter"
	"tracker/internal/model"
	"tracker/internal/storage"
)

type fakeStore struct {
	nextID    int64
	inserted  []storage.Row
	deleted   []int64
	insertErr error
}

func (s *fakeStore) Insert(_ context.Context, t core.Transaction) (int64, error) {
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	s.inserted = append(s.inserted, storage.Row{ID: s.nextID, Transaction: t})
	return s.nextID, nil
}

func (s *fakeStore) SoftDelete(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStore) ListActive(_ context.Context) ([]storage.Row, error) {
	return s.inserted, nil
}

func (s *fakeStore) Close() error { return nil }

type fakePublisher struct {
	events []*amqp.Event
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, e *amqp.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func newLedger(store Store, pub Publisher) (*Ledger, *model.Model) {
	m := model.New()
	c := controller.New(m, nil)
	return NewLedger(m, c, store, pub), m
}

func TestLedger_AddTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and publishes", func(t *testing.T) {
		store := &fakeStore{}
		pub := &fakePublisher{}
		l, m := newLedger(store, pub)

		if err := l.AddTransaction(ctx, core.Money{Cents: 2500}, "Food"); err != nil {
			t.Fatalf("AddTransaction error: %v", err)
		}

		if n := len(m.Transactions()); n != 1 {
			t.Errorf("model transaction count = %d, want 1", n)
		}
		if len(store.inserted) != 1 {
			t.Errorf("inserted rows = %d, want 1", len(store.inserted))
		}
		if len(pub.events) != 1 || pub.events[0].Kind != amqp.KindSync {
			t.Errorf("events = %v, want one sync event", pub.events)
		}
	})

	t.Run("invalid input is rejected before persistence", func(t *testing.T) {
		store := &fakeStore{}
		l, m := newLedger(store, nil)

		err := l.AddTransaction(ctx, core.Money{Cents: 0}, "Food")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("error = %v, want ErrInvalidInput", err)
		}
		if len(m.Transactions()) != 0 || len(store.inserted) != 0 {
			t.Error("rejected input must touch neither model nor storage")
		}
	})

	t.Run("storage failure keeps session-only entry", func(t *testing.T) {
		store := &fakeStore{insertErr: errors.New("disk full")}
		pub := &fakePublisher{}
		l, m := newLedger(store, pub)

		if err := l.AddTransaction(ctx, core.Money{Cents: 2500}, "Food"); err != nil {
			t.Fatalf("AddTransaction error: %v", err)
		}
		if n := len(m.Transactions()); n != 1 {
			t.Errorf("model transaction count = %d, want 1", n)
		}
		if len(pub.events) != 0 {
			t.Error("unpersisted row must not publish a sync event")
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		store := &fakeStore{}
		pub := &fakePublisher{err: errors.New("broker down")}
		l, _ := newLedger(store, pub)

		if err := l.AddTransaction(ctx, core.Money{Cents: 2500}, "Food"); err != nil {
			t.Fatalf("AddTransaction error: %v", err)
		}
	})
}

func TestLedger_Undo(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*Ledger, *model.Model, *fakeStore, *fakePublisher) {
		t.Helper()
		store := &fakeStore{}
		pub := &fakePublisher{}
		l, m := newLedger(store, pub)
		for _, in := range []struct {
			cents    int64
			category string
		}{{2500, "Food"}, {1000, "Transport"}} {
			if err := l.AddTransaction(ctx, core.Money{Cents: in.cents}, in.category); err != nil {
				t.Fatal(err)
			}
		}
		pub.events = nil
		return l, m, store, pub
	}

	t.Run("removes row, soft deletes and publishes", func(t *testing.T) {
		l, m, store, pub := seed(t)

		if err := l.Undo(ctx, 0); err != nil {
			t.Fatalf("Undo error: %v", err)
		}

		txs := m.Transactions()
		if len(txs) != 1 || txs[0].Category != "Transport" {
			t.Errorf("remaining transactions = %v, want only Transport", txs)
		}
		if len(store.deleted) != 1 || store.deleted[0] != 1 {
			t.Errorf("deleted IDs = %v, want [1]", store.deleted)
		}
		if len(pub.events) != 1 || pub.events[0].Kind != amqp.KindDelete {
			t.Fatalf("events = %v, want one delete event", pub.events)
		}
		if pub.events[0].AmountCents != 2500 || pub.events[0].Category != "Food" {
			t.Errorf("delete event data = %+v, want the removed transaction", pub.events[0])
		}
	})

	t.Run("out of range", func(t *testing.T) {
		l, _, store, _ := seed(t)

		for _, idx := range []int{-1, 2, 99} {
			if err := l.Undo(ctx, idx); !errors.Is(err, ErrRowOutOfRange) {
				t.Errorf("Undo(%d) = %v, want ErrRowOutOfRange", idx, err)
			}
		}
		if len(store.deleted) != 0 {
			t.Error("out-of-range undo must not delete anything")
		}
	})

	t.Run("duplicate rows keep IDs aligned", func(t *testing.T) {
		l, m, store, _ := seed(t)
		// Third row duplicates the first; undoing it removes the first
		// occurrence, so the first row's ID must be the one deleted.
		if err := l.AddTransaction(ctx, core.Money{Cents: 2500}, "Food"); err != nil {
			t.Fatal(err)
		}

		if err := l.Undo(ctx, 2); err != nil {
			t.Fatalf("Undo error: %v", err)
		}

		if len(store.deleted) != 1 || store.deleted[0] != 1 {
			t.Errorf("deleted IDs = %v, want [1] (first occurrence)", store.deleted)
		}

		// The surviving duplicate must still undo cleanly with its own ID.
		if err := l.Undo(ctx, 1); err != nil {
			t.Fatalf("second Undo error: %v", err)
		}
		if got := store.deleted; len(got) != 2 || got[1] != 3 {
			t.Errorf("deleted IDs = %v, want [1 3]", got)
		}
		if n := len(m.Transactions()); n != 1 {
			t.Errorf("remaining transactions = %d, want 1", n)
		}
	})
}

func TestLedger_Load(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	seedLedger, _ := newLedger(store, nil)
	for _, category := range []string{"Food", "Transport"} {
		if err := seedLedger.AddTransaction(ctx, core.Money{Cents: 1000}, category); err != nil {
			t.Fatal(err)
		}
	}

	l, m := newLedger(store, nil)
	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load error: %v", err)
	}

	txs := m.Transactions()
	if len(txs) != 2 || txs[0].Category != "Food" || txs[1].Category != "Transport" {
		t.Errorf("hydrated transactions = %v, want seeded order", txs)
	}

	// Undo after hydration must map back to the right row ID.
	if err := l.Undo(ctx, 1); err != nil {
		t.Fatalf("Undo error: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != 2 {
		t.Errorf("deleted IDs = %v, want [2]", store.deleted)
	}
}

func TestLedger_FilterFlow(t *testing.T) {
	ctx := context.Background()
	l, m := newLedger(nil, nil)
	for _, category := range []string{"Food", "Transport"} {
		if err := l.AddTransaction(ctx, core.Money{Cents: 1000}, category); err != nil {
			t.Fatal(err)
		}
	}

	l.SetFilter(filter.ByCategory{Category: "Transport"})
	l.ApplyFilter()

	txs, indices := l.Snapshot()
	if len(txs) != 2 {
		t.Fatalf("snapshot transactions = %d, want 2", len(txs))
	}
	if len(indices) != 1 || indices[0] != 1 {
		t.Errorf("matched indices = %v, want [1]", indices)
	}
	if got := m.MatchedFilterIndices(); len(got) != 1 || got[0] != 1 {
		t.Errorf("model matched indices = %v, want [1]", got)
	}
}
