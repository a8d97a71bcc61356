package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/google/uuid"
)

// AccountService manages the account lifecycle: creation with unique
// account numbers, detail updates, and soft deactivation. Balance
// mutation belongs to the LedgerService exclusively.
type AccountService struct {
	store Store
	audit *AuditService
}

func NewAccountService(store Store) *AccountService {
	return &AccountService{
		store: store,
		audit: NewAuditService(store),
	}
}

// Create opens a zero-balance account. The account number is generated
// and uniqueness-checked inside the same transaction that inserts the
// row, so a concurrent creation cannot slip between check and insert.
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, accountType, currency string) (*models.Account, error) {
	if !domain.ValidAccountType(accountType) {
		return nil, fmt.Errorf("%w: invalid account type %q", ErrValidation, accountType)
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}

	account := &models.Account{
		ID:          uuid.New(),
		UserID:      userID,
		AccountType: accountType,
		Currency:    currency,
		Balance:     0,
		Status:      domain.AccountStatusActive,
	}
	err := s.store.RunInTx(ctx, func(r *repository.Repository) error {
		number, err := generateAccountNumber(ctx, r.AccountNumberExists)
		if err != nil {
			return err
		}
		account.AccountNumber = number
		if err := r.CreateAccount(ctx, account); err != nil {
			return err
		}
		return s.audit.Write(ctx, r, "account", account.ID, &userID, "created", "", domain.AccountStatusActive)
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return account, nil
}

// Get returns an account regardless of lifecycle state.
func (s *AccountService) Get(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	account, err := s.store.Repo().GetAccount(ctx, accountID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return account, nil
}

// ListForUser returns the user's active accounts.
func (s *AccountService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	accounts, err := s.store.Repo().ListAccountsForUser(ctx, userID)
	if err != nil {
		return nil, mapLedgerError(err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

// Update changes the account type and/or currency of an active account.
// Empty fields keep their current value.
func (s *AccountService) Update(ctx context.Context, accountID uuid.UUID, accountType, currency string) (*models.Account, error) {
	var updated *models.Account
	err := s.store.RunInTx(ctx, func(r *repository.Repository) error {
		account, err := lockActiveAccount(ctx, r, accountID)
		if err != nil {
			return err
		}

		if accountType == "" {
			accountType = account.AccountType
		} else if !domain.ValidAccountType(accountType) {
			return fmt.Errorf("%w: invalid account type %q", ErrValidation, accountType)
		}
		if currency == "" {
			currency = account.Currency
		} else {
			currency = strings.ToUpper(strings.TrimSpace(currency))
			if len(currency) != 3 {
				return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
			}
		}

		updated, err = r.UpdateAccountDetails(ctx, accountID, accountType, currency)
		if err != nil {
			return err
		}
		return s.audit.Write(ctx, r, "account", accountID, nil, "updated", account.AccountType+"/"+account.Currency, accountType+"/"+currency)
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}
	return updated, nil
}

// Deactivate soft-deletes an account. Accounts holding funds cannot be
// closed; history stays queryable afterwards but mutation is rejected.
func (s *AccountService) Deactivate(ctx context.Context, accountID uuid.UUID) error {
	err := s.store.RunInTx(ctx, func(r *repository.Repository) error {
		account, err := lockActiveAccount(ctx, r, accountID)
		if err != nil {
			return err
		}
		if account.Balance > 0 {
			return models.ErrNonZeroBalance
		}
		if err := r.DeactivateAccount(ctx, accountID); err != nil {
			return err
		}
		return s.audit.Write(ctx, r, "account", accountID, nil, "deactivated", domain.AccountStatusActive, domain.AccountStatusInactive)
	})
	return mapLedgerError(err)
}
