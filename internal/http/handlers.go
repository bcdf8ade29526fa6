package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"tracker/internal/core"
	"tracker/internal/filter"
	"tracker/internal/services"
)

type createTransactionRequest struct {
	Amount   string `json:"amount"`
	Category string `json:"category"`
}

type setFilterRequest struct {
	Category string `json:"category,omitempty"`
	Min      string `json:"min,omitempty"`
	Max      string `json:"max,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, indices := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, changePayload{
		Transactions:   toTransactionJSON(txs),
		MatchedIndices: indices,
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	category := strings.TrimSpace(req.Category)
	if err := s.ledger.AddTransaction(r.Context(), core.Money{Cents: cents}, category); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, "invalid transaction input")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to add transaction", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	txs, _ := s.ledger.Snapshot()
	slog.InfoContext(r.Context(), "Transaction created",
		"amount_cents", cents,
		"category", category,
		"row", len(txs)-1)

	writeJSON(w, http.StatusCreated, transactionJSON{
		Row:      len(txs) - 1,
		Amount:   core.Money{Cents: cents}.String(),
		Category: category,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(r.PathValue("row"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid row index")
		return
	}

	if err := s.ledger.Undo(r.Context(), row); err != nil {
		if errors.Is(err, services.ErrRowOutOfRange) {
			writeError(w, http.StatusNotFound, "row not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to undo transaction", "row", row, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req setFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	f, err := buildFilter(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.ledger.SetFilter(f)
	if f == nil {
		writeJSON(w, http.StatusOK, map[string]string{"filter": "cleared"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filter": "set"})
}

func (s *Server) handleApplyFilter(w http.ResponseWriter, r *http.Request) {
	s.ledger.ApplyFilter()

	_, indices := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"matched_indices": indices})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	frames, cancel := s.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// buildFilter maps the request to a concrete filter. An empty request
// clears the active filter; category and amount bounds are mutually
// exclusive.
func buildFilter(req setFilterRequest) (filter.TransactionFilter, error) {
	hasCategory := strings.TrimSpace(req.Category) != ""
	hasRange := req.Min != "" || req.Max != ""

	switch {
	case hasCategory && hasRange:
		return nil, errors.New("specify either category or an amount range, not both")
	case hasCategory:
		return filter.ByCategory{Category: strings.TrimSpace(req.Category)}, nil
	case hasRange:
		var f filter.ByAmountRange
		if req.Min != "" {
			cents, err := core.ParseDecimalToCents(req.Min)
			if err != nil {
				return nil, errors.New("invalid min amount")
			}
			f.MinCents = &cents
		}
		if req.Max != "" {
			cents, err := core.ParseDecimalToCents(req.Max)
			if err != nil {
				return nil, errors.New("invalid max amount")
			}
			f.MaxCents = &cents
		}
		return f, nil
	default:
		return nil, nil
	}
}
