package models

import "errors"

// Ledger error taxonomy. Handlers translate these to HTTP statuses;
// services wrap them with context and callers match via errors.Is.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrSameAccount         = errors.New("cannot transfer to the same account")
	ErrNonZeroBalance      = errors.New("account balance must be zero")
	ErrDuplicateIdentifier = errors.New("could not generate a unique identifier")
	ErrStorageFailure      = errors.New("storage failure")

	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrTransactionNotFound = errors.New("transaction not found")
)
