package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AccountHandler struct {
	accounts *service.AccountService
	ledger   *service.LedgerService
}

func NewAccountHandler(accounts *service.AccountService, ledger *service.LedgerService) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger}
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	var req struct {
		UserID      string `json:"user_id,omitempty"`
		AccountType string `json:"account_type"`
		Currency    string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	ownerID := actorID
	if req.UserID != "" {
		parsed, err := uuid.Parse(req.UserID)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-user-id", "Invalid user_id")
			return
		}
		if !isAdmin && parsed != actorID {
			RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
			return
		}
		ownerID = parsed
	}

	account, err := h.accounts.Create(r.Context(), ownerID, req.AccountType, req.Currency)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		if status, pType, msg, ok := mapDBError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("create account failed", zap.Error(err), zap.String("user_id", ownerID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/create-failed", "Failed to create account")
		return
	}

	RespondJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return
	}

	ownerID := actorID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, r, http.StatusBadRequest, "request/invalid-user-id", "Invalid user_id")
			return
		}
		if !isAdmin && parsed != actorID {
			RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
			return
		}
		ownerID = parsed
	}

	accounts, err := h.accounts.ListForUser(r.Context(), ownerID)
	if err != nil {
		zap.L().Error("list accounts failed", zap.Error(err), zap.String("user_id", ownerID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/list-failed", "Failed to list accounts")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]interface{}{"accounts": accounts})
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}
	RespondJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	account, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	var req struct {
		AccountType string `json:"account_type"`
		Currency    string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	updated, err := h.accounts.Update(r.Context(), account.ID, req.AccountType, req.Currency)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("update account failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/update-failed", "Failed to update account")
		return
	}

	RespondJSON(w, http.StatusOK, updated)
}

func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	account, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	if err := h.accounts.Deactivate(r.Context(), account.ID); err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("deactivate account failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/deactivate-failed", "Failed to deactivate account")
		return
	}

	RespondJSON(w, http.StatusOK, map[string]string{"status": "account deactivated"})
}

func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "deposit", h.ledger.Deposit)
}

func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "withdrawal", h.ledger.Withdraw)
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), account.ID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("get balance failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/balance-read-failed", "Failed to get balance")
		return
	}

	RespondJSON(w, http.StatusOK, balance)
}

func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	account, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	history, err := h.ledger.ListTransactions(r.Context(), account.ID, page, pageSize)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("list transactions failed", zap.Error(err), zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/transactions-read-failed", "Failed to list transactions")
		return
	}

	RespondJSON(w, http.StatusOK, history)
}

type mutationFunc func(ctx context.Context, accountID uuid.UUID, amount, description string) (*service.MutationResult, error)

func (h *AccountHandler) mutate(w http.ResponseWriter, r *http.Request, operation string, fn mutationFunc) {
	account, ok := h.authorizeAccount(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Invalid request body")
		return
	}

	result, err := fn(r.Context(), account.ID, req.Amount, req.Description)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return
		}
		zap.L().Error("ledger mutation failed", zap.Error(err),
			zap.String("operation", operation),
			zap.String("account_id", account.ID.String()))
		RespondError(w, r, http.StatusInternalServerError, "ledger/operation-failed", "Ledger operation failed")
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

// authorizeAccount parses {id}, loads the account, and enforces
// ownership. On failure it writes the response and returns ok=false.
func (h *AccountHandler) authorizeAccount(w http.ResponseWriter, r *http.Request) (*models.Account, bool) {
	actorID, isAdmin, err := requestActor(r)
	if err != nil {
		RespondError(w, r, http.StatusUnauthorized, "auth/unauthorized", "Unauthorized")
		return nil, false
	}

	accountID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-account-id", "Invalid account ID")
		return nil, false
	}

	account, err := h.accounts.Get(r.Context(), accountID)
	if err != nil {
		if status, pType, msg, ok := mapServiceError(err); ok {
			RespondError(w, r, status, pType, msg)
			return nil, false
		}
		zap.L().Error("account lookup failed", zap.Error(err), zap.String("account_id", accountID.String()))
		RespondError(w, r, http.StatusInternalServerError, "account/lookup-failed", "Failed to load account")
		return nil, false
	}
	if !isAdmin && account.UserID != actorID {
		RespondError(w, r, http.StatusForbidden, "auth/insufficient-permissions", "insufficient permissions")
		return nil, false
	}

	return account, true
}
