package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/observability"
	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerService is the transaction engine: it owns every balance
// mutation and the append-only transaction records that describe them.
// Each mutating operation is one database transaction; the sufficiency
// check, the balance write, and the record append all happen under the
// same row locks.
type LedgerService struct {
	store   Store
	ceiling decimal.Decimal
}

// NewLedgerService creates a ledger engine with the given per-operation
// amount ceiling, expressed in whole currency units.
func NewLedgerService(store Store, ceiling decimal.Decimal) *LedgerService {
	return &LedgerService{store: store, ceiling: ceiling}
}

// MutationResult reports the outcome of a deposit or withdrawal.
type MutationResult struct {
	NewBalance  int64              `json:"new_balance"` // micros
	Currency    string             `json:"currency"`
	Transaction models.Transaction `json:"transaction"`
}

// TransferResult reports both legs of a completed transfer.
type TransferResult struct {
	FromTransaction models.Transaction `json:"from_transaction"`
	ToTransaction   models.Transaction `json:"to_transaction"`
	FromBalance     int64              `json:"from_balance"` // micros
	ToBalance       int64              `json:"to_balance"`   // micros
}

// Balance is a point-in-time account balance.
type Balance struct {
	Balance  int64  `json:"balance"` // micros
	Currency string `json:"currency"`
}

// Deposit credits an active account and appends one transaction with a
// positive amount, atomically.
func (s *LedgerService) Deposit(ctx context.Context, accountID uuid.UUID, amount, description string) (*MutationResult, error) {
	micros, err := ParseAmount(amount, s.ceiling)
	if err != nil {
		observability.IncrementLedgerOperation(domain.TxTypeDeposit, "rejected")
		return nil, err
	}
	if description == "" {
		description = "Deposit"
	}

	var res MutationResult
	err = s.store.RunInTx(ctx, func(r *repository.Repository) error {
		account, err := lockActiveAccount(ctx, r, accountID)
		if err != nil {
			return err
		}

		newBalance := account.Balance + micros
		if err := r.UpdateAccountBalance(ctx, accountID, newBalance); err != nil {
			return err
		}

		txn, err := appendTransaction(ctx, r, accountID, domain.TxTypeDeposit, micros, description, nil)
		if err != nil {
			return err
		}

		res = MutationResult{NewBalance: newBalance, Currency: account.Currency, Transaction: *txn}
		return nil
	})
	if err != nil {
		observability.IncrementLedgerOperation(domain.TxTypeDeposit, "failed")
		return nil, mapLedgerError(err)
	}
	observability.IncrementLedgerOperation(domain.TxTypeDeposit, "completed")
	return &res, nil
}

// Withdraw debits an active account and appends one transaction with a
// negative amount. The balance can never go below zero: the sufficiency
// check runs against the row locked by this same transaction.
func (s *LedgerService) Withdraw(ctx context.Context, accountID uuid.UUID, amount, description string) (*MutationResult, error) {
	micros, err := ParseAmount(amount, s.ceiling)
	if err != nil {
		observability.IncrementLedgerOperation(domain.TxTypeWithdrawal, "rejected")
		return nil, err
	}
	if description == "" {
		description = "Withdrawal"
	}

	var res MutationResult
	err = s.store.RunInTx(ctx, func(r *repository.Repository) error {
		account, err := lockActiveAccount(ctx, r, accountID)
		if err != nil {
			return err
		}
		if account.Balance < micros {
			return models.ErrInsufficientFunds
		}

		newBalance := account.Balance - micros
		if err := r.UpdateAccountBalance(ctx, accountID, newBalance); err != nil {
			return err
		}

		txn, err := appendTransaction(ctx, r, accountID, domain.TxTypeWithdrawal, -micros, description, nil)
		if err != nil {
			return err
		}

		res = MutationResult{NewBalance: newBalance, Currency: account.Currency, Transaction: *txn}
		return nil
	})
	if err != nil {
		observability.IncrementLedgerOperation(domain.TxTypeWithdrawal, "failed")
		return nil, mapLedgerError(err)
	}
	observability.IncrementLedgerOperation(domain.TxTypeWithdrawal, "completed")
	return &res, nil
}

// Transfer moves funds between two active accounts as one atomic unit:
// two balance updates and two mutually linked transaction legs. Rows
// are locked in ascending account-id order so transfers over the same
// pair in opposite directions cannot deadlock.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount, description string) (*TransferResult, error) {
	if fromID == toID {
		observability.IncrementLedgerOperation(domain.TxTypeTransfer, "rejected")
		return nil, models.ErrSameAccount
	}
	micros, err := ParseAmount(amount, s.ceiling)
	if err != nil {
		observability.IncrementLedgerOperation(domain.TxTypeTransfer, "rejected")
		return nil, err
	}

	var res TransferResult
	err = s.store.RunInTx(ctx, func(r *repository.Repository) error {
		firstID, secondID := fromID, toID
		if firstID.String() > secondID.String() {
			firstID, secondID = secondID, firstID
		}

		first, err := lockActiveAccount(ctx, r, firstID)
		if err != nil {
			return err
		}
		second, err := lockActiveAccount(ctx, r, secondID)
		if err != nil {
			return err
		}

		from, to := first, second
		if from.ID != fromID {
			from, to = second, first
		}

		if from.Currency != to.Currency {
			return fmt.Errorf("%w: currency mismatch between %s and %s", models.ErrInvalidAmount, from.Currency, to.Currency)
		}
		if from.Balance < micros {
			return models.ErrInsufficientFunds
		}

		fromBalance := from.Balance - micros
		toBalance := to.Balance + micros
		if err := r.UpdateAccountBalance(ctx, from.ID, fromBalance); err != nil {
			return err
		}
		if err := r.UpdateAccountBalance(ctx, to.ID, toBalance); err != nil {
			return err
		}

		fromDesc := description
		if fromDesc == "" {
			fromDesc = "Transfer to " + to.AccountNumber
		}
		toDesc := description
		if toDesc == "" {
			toDesc = "Transfer from " + from.AccountNumber
		}

		debit, err := appendTransaction(ctx, r, from.ID, domain.TxTypeTransfer, -micros, fromDesc, nil)
		if err != nil {
			return err
		}
		credit, err := appendTransaction(ctx, r, to.ID, domain.TxTypeTransfer, micros, toDesc, &debit.ID)
		if err != nil {
			return err
		}
		if err := r.SetRelatedTransaction(ctx, debit.ID, credit.ID); err != nil {
			return err
		}
		debit.RelatedTransactionID = &credit.ID

		res = TransferResult{
			FromTransaction: *debit,
			ToTransaction:   *credit,
			FromBalance:     fromBalance,
			ToBalance:       toBalance,
		}
		return nil
	})
	if err != nil {
		observability.IncrementLedgerOperation(domain.TxTypeTransfer, "failed")
		return nil, mapLedgerError(err)
	}
	observability.IncrementLedgerOperation(domain.TxTypeTransfer, "completed")
	return &res, nil
}

// GetBalance returns the balance and currency of an active account.
func (s *LedgerService) GetBalance(ctx context.Context, accountID uuid.UUID) (*Balance, error) {
	account, err := s.store.Repo().GetAccount(ctx, accountID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	if account.Status != domain.AccountStatusActive {
		return nil, models.ErrAccountNotFound
	}
	return &Balance{Balance: account.Balance, Currency: account.Currency}, nil
}

// ListTransactions returns one page of an account's history, newest
// first. History remains readable after deactivation.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID uuid.UUID, page, pageSize int) (*models.TransactionPage, error) {
	if _, err := s.store.Repo().GetAccount(ctx, accountID); err != nil {
		return nil, mapLedgerError(err)
	}
	return s.listPage(ctx, []uuid.UUID{accountID}, page, pageSize)
}

// ListUserTransactions returns one page of history across all of a
// user's active accounts.
func (s *LedgerService) ListUserTransactions(ctx context.Context, userID uuid.UUID, page, pageSize int) (*models.TransactionPage, error) {
	accountIDs, err := s.store.Repo().ListAccountIDsForUser(ctx, userID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	page, pageSize = normalizePage(page, pageSize)
	if len(accountIDs) == 0 {
		return &models.TransactionPage{Transactions: []models.Transaction{}, Page: page, PageSize: pageSize}, nil
	}
	return s.listPage(ctx, accountIDs, page, pageSize)
}

// GetUserTransaction fetches a single transaction scoped to accounts
// the given user owns.
func (s *LedgerService) GetUserTransaction(ctx context.Context, userID, transactionID uuid.UUID) (*models.Transaction, error) {
	repo := s.store.Repo()
	txn, err := repo.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	account, err := repo.GetAccount(ctx, txn.AccountID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	if account.UserID != userID {
		return nil, models.ErrTransactionNotFound
	}
	return txn, nil
}

// Stats aggregates per-type counts and sums over the given accounts and
// optional date range.
func (s *LedgerService) Stats(ctx context.Context, accountIDs []uuid.UUID, from, to *time.Time) (*models.TransactionStats, error) {
	if len(accountIDs) == 0 {
		return &models.TransactionStats{}, nil
	}
	stats, err := s.store.Repo().TransactionStats(ctx, accountIDs, from, to)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return stats, nil
}

// UserStats aggregates over all active accounts of a user.
func (s *LedgerService) UserStats(ctx context.Context, userID uuid.UUID, from, to *time.Time) (*models.TransactionStats, error) {
	accountIDs, err := s.store.Repo().ListAccountIDsForUser(ctx, userID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return s.Stats(ctx, accountIDs, from, to)
}

func (s *LedgerService) listPage(ctx context.Context, accountIDs []uuid.UUID, page, pageSize int) (*models.TransactionPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	repo := s.store.Repo()

	txns, err := repo.ListTransactions(ctx, accountIDs, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	total, err := repo.CountTransactions(ctx, accountIDs)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return &models.TransactionPage{
		Transactions: txns,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
		Pages:        (total + int64(pageSize) - 1) / int64(pageSize),
	}, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// lockActiveAccount locks an account row for the enclosing transaction.
// Missing and inactive accounts are indistinguishable to callers.
func lockActiveAccount(ctx context.Context, r *repository.Repository, id uuid.UUID) (*models.Account, error) {
	account, err := r.GetAccountForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if account.Status != domain.AccountStatusActive {
		return nil, models.ErrAccountNotFound
	}
	return account, nil
}

// appendTransaction writes one immutable ledger line with a freshly
// generated unique reference, inside the caller's transaction.
func appendTransaction(ctx context.Context, r *repository.Repository, accountID uuid.UUID, txType string, micros int64, description string, relatedID *uuid.UUID) (*models.Transaction, error) {
	ref, err := generateReferenceNumber(ctx, r.ReferenceNumberExists)
	if err != nil {
		return nil, err
	}
	txn := &models.Transaction{
		ID:                   uuid.New(),
		AccountID:            accountID,
		Type:                 txType,
		Amount:               micros,
		Description:          description,
		ReferenceNumber:      ref,
		Status:               domain.TxStatusCompleted,
		RelatedTransactionID: relatedID,
	}
	if err := r.InsertTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// mapLedgerError passes domain errors through and tags everything else
// as a storage failure so callers can distinguish business rejections
// from infrastructure faults.
func mapLedgerError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		models.ErrAccountNotFound,
		models.ErrInvalidAmount,
		models.ErrInsufficientFunds,
		models.ErrSameAccount,
		models.ErrNonZeroBalance,
		models.ErrDuplicateIdentifier,
		models.ErrUserNotFound,
		models.ErrInvalidCredentials,
		models.ErrTransactionNotFound,
		ErrValidation,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	// Keep the cause in the chain so handlers can still inspect
	// driver errors (errors.As on *pgconn.PgError).
	return fmt.Errorf("%w: %w", models.ErrStorageFailure, err)
}
