package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Account struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	AccountNumber string    `json:"account_number"`
	AccountType   string    `json:"account_type"`
	Currency      string    `json:"currency"`
	Balance       int64     `json:"balance"` // micros
	Status        string    `json:"status"`  // "active" or "inactive"
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Transaction is one immutable ledger line. Amount is signed micros:
// positive for credits, negative for debits. Transfer legs carry the id
// of their counterpart in RelatedTransactionID.
type Transaction struct {
	ID                   uuid.UUID  `json:"id"`
	AccountID            uuid.UUID  `json:"account_id"`
	Type                 string     `json:"type"`
	Amount               int64      `json:"amount"` // micros
	Description          string     `json:"description"`
	ReferenceNumber      string     `json:"reference_number"`
	Status               string     `json:"status"`
	RelatedTransactionID *uuid.UUID `json:"related_transaction_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// TransactionPage is one page of ledger history, newest first.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
	Page         int           `json:"page"`
	PageSize     int           `json:"page_size"`
	Pages        int64         `json:"pages"`
}

// TransactionStats aggregates ledger activity over a set of accounts
// and an optional date range.
type TransactionStats struct {
	TotalTransactions int64 `json:"total_transactions"`
	TotalDeposits     int64 `json:"total_deposits"`
	TotalWithdrawals  int64 `json:"total_withdrawals"`
	TotalTransfers    int64 `json:"total_transfers"`
	TotalDeposited    int64 `json:"total_deposited"` // micros
	TotalWithdrawn    int64 `json:"total_withdrawn"` // micros, absolute value
	NetAmount         int64 `json:"net_amount"`      // micros, signed
}
