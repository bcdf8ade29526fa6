package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	KindSync   = "sync"
	KindDelete = "delete"
)

// Event is the wire envelope for ledger change notifications. Sync events
// carry only the row ID; the worker fetches the full transaction from the
// database. Delete events carry the transaction data too, because the
// deleted row may be gone by the time the worker needs to locate the
// matching spreadsheet row.
type Event struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// Populated for delete events only.
	AmountCents int64  `json:"amount_cents,omitempty"`
	Category    string `json:"category,omitempty"`
}

// NewSyncEvent builds a sync event for a freshly inserted ledger row.
func NewSyncEvent(id int64) *Event {
	return &Event{
		EventID:   uuid.NewString(),
		Kind:      KindSync,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeleteEvent builds a delete event carrying the removed transaction.
func NewDeleteEvent(id int64, amountCents int64, category string) *Event {
	return &Event{
		EventID:     uuid.NewString(),
		Kind:        KindDelete,
		ID:          id,
		Timestamp:   time.Now(),
		AmountCents: amountCents,
		Category:    category,
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if e.Kind != KindSync && e.Kind != KindDelete {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return &e, nil
}
