package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/ayo6706/banking-core/internal/service"
	"github.com/ayo6706/banking-core/internal/testutil/testdb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtures(t *testing.T) (*repository.Store, *service.LedgerService, *service.AccountService) {
	t.Helper()
	pool := testdb.Connect(t)
	store := repository.NewStore(pool)
	ledger := service.NewLedgerService(store, decimal.NewFromInt(1_000_000))
	accounts := service.NewAccountService(store)
	return store, ledger, accounts
}

func createUser(t *testing.T, store *repository.Store) uuid.UUID {
	t.Helper()
	id := uuid.New()
	user := &models.User{
		ID:       id,
		Username: "user_" + id.String()[:8],
		Role:     domain.RoleUser,
	}
	require.NoError(t, store.Repo().CreateUser(context.Background(), user))
	return id
}

func createAccount(t *testing.T, accounts *service.AccountService, userID uuid.UUID) *models.Account {
	t.Helper()
	account, err := accounts.Create(context.Background(), userID, domain.AccountTypeSavings, "USD")
	require.NoError(t, err)
	return account
}

func TestDeposit(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	res, err := ledger.Deposit(ctx, account.ID, "100.50", "payday")
	require.NoError(t, err)
	assert.Equal(t, int64(100_500_000), res.NewBalance)
	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, domain.TxTypeDeposit, res.Transaction.Type)
	assert.Equal(t, int64(100_500_000), res.Transaction.Amount)
	assert.Equal(t, "payday", res.Transaction.Description)
	assert.Len(t, res.Transaction.ReferenceNumber, domain.ReferenceNumberLength)

	stored, err := accounts.Get(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100_500_000), stored.Balance)
}

func TestDepositRejectsBadAmounts(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	for _, amount := range []string{"", "abc", "0", "-10", "0.0000001", "1000001"} {
		_, err := ledger.Deposit(ctx, account.ID, amount, "")
		assert.ErrorIs(t, err, models.ErrInvalidAmount, "amount %q", amount)
	}

	// Nothing was written.
	balance, err := ledger.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Balance)

	page, err := ledger.ListTransactions(ctx, account.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestDepositUnknownAccount(t *testing.T) {
	_, ledger, _ := newFixtures(t)

	_, err := ledger.Deposit(context.Background(), uuid.New(), "10", "")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestWithdraw(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, account.ID, "100", "")
	require.NoError(t, err)

	res, err := ledger.Withdraw(ctx, account.ID, "40.25", "groceries")
	require.NoError(t, err)
	assert.Equal(t, int64(59_750_000), res.NewBalance)
	assert.Equal(t, domain.TxTypeWithdrawal, res.Transaction.Type)
	assert.Equal(t, int64(-40_250_000), res.Transaction.Amount)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, account.ID, "10", "")
	require.NoError(t, err)

	_, err = ledger.Withdraw(ctx, account.ID, "10.01", "")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	// Balance unchanged, no withdrawal recorded.
	balance, err := ledger.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), balance.Balance)

	page, err := ledger.ListTransactions(ctx, account.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestTransfer(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	from := createAccount(t, accounts, userID)
	to := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, from.ID, "100", "")
	require.NoError(t, err)

	res, err := ledger.Transfer(ctx, from.ID, to.ID, "30", "rent")
	require.NoError(t, err)
	assert.Equal(t, int64(70_000_000), res.FromBalance)
	assert.Equal(t, int64(30_000_000), res.ToBalance)
	assert.Equal(t, int64(-30_000_000), res.FromTransaction.Amount)
	assert.Equal(t, int64(30_000_000), res.ToTransaction.Amount)
	assert.Equal(t, domain.TxTypeTransfer, res.FromTransaction.Type)
	assert.Equal(t, domain.TxTypeTransfer, res.ToTransaction.Type)

	// Legs reference each other.
	require.NotNil(t, res.FromTransaction.RelatedTransactionID)
	require.NotNil(t, res.ToTransaction.RelatedTransactionID)
	assert.Equal(t, res.ToTransaction.ID, *res.FromTransaction.RelatedTransactionID)
	assert.Equal(t, res.FromTransaction.ID, *res.ToTransaction.RelatedTransactionID)

	// Conservation across transfer legs.
	net, err := store.Repo().TransferNet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), net)
}

func TestTransferSameAccount(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	_, err := ledger.Transfer(ctx, account.ID, account.ID, "10", "")
	assert.ErrorIs(t, err, models.ErrSameAccount)
}

func TestTransferInsufficientFundsLeavesNoTrace(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	from := createAccount(t, accounts, userID)
	to := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, from.ID, "5", "")
	require.NoError(t, err)

	_, err = ledger.Transfer(ctx, from.ID, to.ID, "10", "")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	fromBalance, err := ledger.GetBalance(ctx, from.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), fromBalance.Balance)

	toBalance, err := ledger.GetBalance(ctx, to.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), toBalance.Balance)

	page, err := ledger.ListTransactions(ctx, to.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
}

func TestTransferCurrencyMismatch(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	from := createAccount(t, accounts, userID)
	to, err := accounts.Create(ctx, userID, domain.AccountTypeSavings, "EUR")
	require.NoError(t, err)

	_, err = ledger.Deposit(ctx, from.ID, "100", "")
	require.NoError(t, err)

	_, err = ledger.Transfer(ctx, from.ID, to.ID, "10", "")
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestTransferToInactiveAccount(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	from := createAccount(t, accounts, userID)
	to := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, from.ID, "100", "")
	require.NoError(t, err)
	require.NoError(t, accounts.Deactivate(ctx, to.ID))

	_, err = ledger.Transfer(ctx, from.ID, to.ID, "10", "")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)
}

func TestListTransactionsPagination(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	for i := 0; i < 5; i++ {
		_, err := ledger.Deposit(ctx, account.ID, "1", "")
		require.NoError(t, err)
	}

	page, err := ledger.ListTransactions(ctx, account.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Transactions, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.Pages)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)

	last, err := ledger.ListTransactions(ctx, account.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, last.Transactions, 1)

	// Defaults apply when parameters are out of range.
	defaulted, err := ledger.ListTransactions(ctx, account.ID, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, defaulted.Page)
	assert.Equal(t, 10, defaulted.PageSize)
}

func TestUserTransactionsAndStats(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	first := createAccount(t, accounts, userID)
	second := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, first.ID, "100", "")
	require.NoError(t, err)
	_, err = ledger.Withdraw(ctx, first.ID, "20", "")
	require.NoError(t, err)
	_, err = ledger.Transfer(ctx, first.ID, second.ID, "30", "")
	require.NoError(t, err)

	page, err := ledger.ListUserTransactions(ctx, userID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)

	stats, err := ledger.UserStats(ctx, userID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalTransactions)
	assert.Equal(t, int64(1), stats.TotalDeposits)
	assert.Equal(t, int64(1), stats.TotalWithdrawals)
	assert.Equal(t, int64(2), stats.TotalTransfers)
	assert.Equal(t, int64(100_000_000), stats.TotalDeposited)
	assert.Equal(t, int64(20_000_000), stats.TotalWithdrawn)
	assert.Equal(t, int64(80_000_000), stats.NetAmount)
}

func TestGetUserTransactionOwnership(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	ownerID := createUser(t, store)
	otherID := createUser(t, store)
	account := createAccount(t, accounts, ownerID)

	res, err := ledger.Deposit(ctx, account.ID, "10", "")
	require.NoError(t, err)

	got, err := ledger.GetUserTransaction(ctx, ownerID, res.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Transaction.ID, got.ID)

	_, err = ledger.GetUserTransaction(ctx, otherID, res.Transaction.ID)
	assert.ErrorIs(t, err, models.ErrTransactionNotFound)
}

func TestReconciliationBalancedLedger(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	from := createAccount(t, accounts, userID)
	to := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, from.ID, "100", "")
	require.NoError(t, err)
	_, err = ledger.Transfer(ctx, from.ID, to.ID, "40", "")
	require.NoError(t, err)

	reconciliation := service.NewReconciliationService(store)
	assert.NoError(t, reconciliation.Run(ctx))
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	store, ledger, accounts := newFixtures(t)
	ctx := context.Background()

	userID := createUser(t, store)
	account := createAccount(t, accounts, userID)

	_, err := ledger.Deposit(ctx, account.ID, "100", "")
	require.NoError(t, err)

	// Eight racing withdrawals of 30 against a balance of 100: the
	// row lock admits exactly three, everyone else sees insufficient
	// funds. The account must never go negative.
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Withdraw(ctx, account.ID, "30", "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	}
	assert.Equal(t, 3, succeeded)

	balance, err := ledger.GetBalance(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), balance.Balance)

	page, err := ledger.ListTransactions(ctx, account.ID, 1, 20)
	require.NoError(t, err)
	// One deposit plus one record per successful withdrawal.
	assert.Equal(t, int64(1+succeeded), page.Total)
}
