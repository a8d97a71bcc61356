package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ayo6706/banking-core/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	ledger *service.LedgerService
}

func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// List returns the caller's ledger history across all of their
// accounts, newest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	history, err := h.ledger.ListUserTransactions(r.Context(), actorID, page, pageSize)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("list user transactions failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "transaction/list-failed", "Failed to list transactions")
		return
	}

	RespondJSON(w, http.StatusOK, history)
}

// Stats aggregates the caller's ledger activity over an optional
// from/to range (RFC 3339 or YYYY-MM-DD).
func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	from, err := parseDateParam(r.URL.Query().Get("from"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-date", "Invalid from date")
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-date", "Invalid to date")
		return
	}

	stats, err := h.ledger.UserStats(r.Context(), actorID, from, to)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transaction stats failed", zap.Error(err), zap.String("user_id", actorID.String()))
		RespondError(w, r, http.StatusInternalServerError, "transaction/stats-failed", "Failed to compute stats")
		return
	}

	RespondJSON(w, http.StatusOK, stats)
}

// Get returns one transaction if it belongs to one of the caller's
// accounts.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actorID, _, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	transactionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-transaction-id", "Invalid transaction ID")
		return
	}

	tx, err := h.ledger.GetUserTransaction(r.Context(), actorID, transactionID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("get transaction failed", zap.Error(err), zap.String("transaction_id", transactionID.String()))
		RespondError(w, r, http.StatusInternalServerError, "transaction/read-failed", "Failed to load transaction")
		return
	}

	RespondJSON(w, http.StatusOK, tx)
}

func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
