package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ayo6706/banking-core/internal/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransferHandler struct {
	accounts *service.AccountService
	ledger   *service.LedgerService
}

func NewTransferHandler(accounts *service.AccountService, ledger *service.LedgerService) *TransferHandler {
	return &TransferHandler{accounts: accounts, ledger: ledger}
}

// Create moves money between two accounts. The caller must own the
// source account; the idempotency middleware guards replays.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req struct {
		FromAccountID string `json:"from_account_id"`
		ToAccountID   string `json:"to_account_id"`
		Amount        string `json:"amount"`
		Description   string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	fromID, err := uuid.Parse(req.FromAccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid from_account_id")
		return
	}
	toID, err := uuid.Parse(req.ToAccountID)
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid to_account_id")
		return
	}

	source, err := h.accounts.Get(r.Context(), fromID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transfer source lookup failed", zap.Error(err), zap.String("account_id", fromID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/lookup-failed", "Failed to load source account")
		return
	}
	if !isAdmin && source.UserID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return
	}

	result, err := h.ledger.Transfer(r.Context(), fromID, toID, req.Amount, req.Description)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("transfer failed", zap.Error(err),
			zap.String("from_account_id", fromID.String()),
			zap.String("to_account_id", toID.String()))
		RespondError(w, r, http.StatusInternalServerError, "ledger/transfer-failed", "Transfer failed")
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}
