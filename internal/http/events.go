package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"tracker/internal/core"
	"tracker/internal/model"
)

// EventHub is the web-facing rendition of the observing view: it registers
// as a model listener and fans every state change out to SSE subscribers.
// It also carries the controller's user messages as notice events.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

type changePayload struct {
	Transactions   []transactionJSON `json:"transactions"`
	MatchedIndices []int             `json:"matched_indices"`
}

type noticePayload struct {
	Message string `json:"message"`
}

type transactionJSON struct {
	Row      int    `json:"row"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan []byte]struct{})}
}

// Update implements model.Listener. It runs synchronously inside the
// mutation, so it only snapshots and hands off; slow subscribers are
// dropped rather than blocking the model.
func (h *EventHub) Update(m *model.Model) {
	payload := changePayload{
		Transactions:   toTransactionJSON(m.Transactions()),
		MatchedIndices: m.MatchedFilterIndices(),
	}
	h.broadcast("change", payload)
}

// ShowMessage implements controller.View.
func (h *EventHub) ShowMessage(msg string) {
	h.broadcast("notice", noticePayload{Message: msg})
}

// Subscribe returns a channel of SSE frames and a cancel function.
func (h *EventHub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// NumSubscribers returns the current subscriber count.
func (h *EventHub) NumSubscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *EventHub) broadcast(event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal SSE payload", "event", event, "error", err)
		return
	}
	frame := []byte("event: " + event + "\ndata: " + string(body) + "\n\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- frame:
		default:
			// Subscriber is not keeping up; skip this frame for it.
		}
	}
}

func toTransactionJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, t := range txs {
		out[i] = transactionJSON{
			Row:      i,
			Amount:   t.Amount.String(),
			Category: t.Category,
		}
	}
	return out
}
