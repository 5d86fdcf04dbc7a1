package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/berlinbruno/money-trail/internal/api/middleware"
	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/domain"
	"github.com/berlinbruno/money-trail/internal/service"
)

// TransactionsHandler handles ledger endpoints.
type TransactionsHandler struct {
	ledger     *service.LedgerService
	reconciler *service.Reconciler
	log        zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(ledger *service.LedgerService, reconciler *service.Reconciler, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{ledger: ledger, reconciler: reconciler, log: log}
}

// parseDate accepts RFC 3339 or a plain date in the ledger's location.
func (h *TransactionsHandler) parseDate(s string, endOfDay bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	loc := h.ledger.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t, true
}

// ListTransactions handles GET /api/transactions.
//
// Query: type, category, search, start, end, preset, sort (date|amount),
// order (asc|desc), pending (true|false), limit.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.TransactionFilters{
		Category: q.Get("category"),
		Search:   strings.TrimSpace(q.Get("search")),
		SortBy:   q.Get("sort"),
		Asc:      strings.EqualFold(q.Get("order"), "asc"),
		Limit:    queryInt(r, "limit", 0),
	}
	if v := q.Get("type"); v != "" && v != "all" {
		t, err := domain.ParseTransactionType(v)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Type = t
	}
	if f.Category == "all" {
		f.Category = ""
	}
	switch q.Get("pending") {
	case "true", "1":
		f.Approval = repository.ApprovalPending
	case "false", "0":
		f.Approval = repository.ApprovalApproved
	}
	var ok bool
	if f.Start, ok = h.parseDate(q.Get("start"), false); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid start date")
		return
	}
	if f.End, ok = h.parseDate(q.Get("end"), true); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid end date")
		return
	}

	txs, err := h.ledger.List(r.Context(), f, service.Preset(q.Get("preset")))
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to list transactions")
		return
	}
	if txs == nil {
		txs = []repository.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// CreateTransaction handles POST /api/transactions.
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.TransactionInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := h.ledger.AddManual(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to create transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}.
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	var in service.TransactionInput
	if err := decode(r, &in); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx, err := h.ledger.Edit(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to update transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	if err := h.ledger.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err, "Failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApproveTransaction handles POST /api/transactions/{id}/approve. An optional body
// {"approved": false} moves the transaction back to the queue.
func (h *TransactionsHandler) ApproveTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	req := struct {
		Approved *bool `json:"approved"`
	}{}
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	approved := req.Approved == nil || *req.Approved
	if err := h.ledger.SetApproved(r.Context(), id, approved); err != nil {
		writeServiceError(w, h.log, err, "Failed to change approval")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "approved": approved})
}

// ApproveAll handles POST /api/transactions/approve-all.
func (h *TransactionsHandler) ApproveAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.ledger.ApproveAll(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to approve transactions")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int64{"approved": n})
}

// Duplicates handles GET /api/transactions/duplicates.
func (h *TransactionsHandler) Duplicates(w http.ResponseWriter, r *http.Request) {
	hints, err := h.reconciler.Hints(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to find duplicates")
		return
	}
	if hints == nil {
		hints = []service.DuplicateHint{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"duplicates": hints})
}
