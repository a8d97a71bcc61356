package service_test

import (
	"context"
	"testing"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	store, _, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)

	account, err := accounts.Create(ctx, userID, domain.AccountTypeChecking, "usd")
	require.NoError(t, err)
	assert.Equal(t, userID, account.UserID)
	assert.Equal(t, domain.AccountTypeChecking, account.AccountType)
	assert.Equal(t, "USD", account.Currency)
	assert.Equal(t, int64(0), account.Balance)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.Len(t, account.AccountNumber, domain.AccountNumberLength)
}

func TestCreateAccountRejectsBadInput(t *testing.T) {
	store, _, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)

	_, err := accounts.Create(ctx, userID, "money-market", "USD")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = accounts.Create(ctx, userID, domain.AccountTypeSavings, "DOLLARS")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestUpdateAccount(t *testing.T) {
	store, _, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	updated, err := accounts.Update(ctx, account.ID, domain.AccountTypeBusiness, "")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountTypeBusiness, updated.AccountType)
	assert.Equal(t, "USD", updated.Currency)

	_, err = accounts.Update(ctx, account.ID, "bogus", "")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = accounts.Update(ctx, account.ID, "", "eurodollars")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDeactivateAccount(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, account.ID, "10", "")
	require.NoError(t, err)

	// Funds still present.
	err = accounts.Deactivate(ctx, account.ID)
	assert.ErrorIs(t, err, models.ErrNonZeroBalance)

	_, err = ledger.Withdraw(ctx, account.ID, "10", "")
	require.NoError(t, err)
	require.NoError(t, accounts.Deactivate(ctx, account.ID))

	// Mutations rejected after deactivation; history still readable.
	_, err = ledger.Deposit(ctx, account.ID, "1", "")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)

	page, err := ledger.ListTransactions(ctx, account.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	// Deactivating twice fails: the account is no longer active.
	err = accounts.Deactivate(ctx, account.ID)
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestListForUserExcludesInactive(t *testing.T) {
	store, _, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	active := createAccount(t, accounts, userID)
	closed := createAccount(t, accounts, userID)
	require.NoError(t, accounts.Deactivate(ctx, closed.ID))

	list, err := accounts.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)
}
