package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and credential checks. Token
// issuance lives in the HTTP layer; this service never sees a JWT.
type AuthService struct {
	store Store
}

func NewAuthService(store Store) *AuthService {
	return &AuthService{store: store}
}

// RegistrationResult reports the new user and their default account.
type RegistrationResult struct {
	User    models.User    `json:"user"`
	Account models.Account `json:"account"`
}

// Register creates a user plus a default savings account in one
// transaction. Username, password, and optional email are validated
// before anything is written.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*RegistrationResult, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if email != "" {
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	account := &models.Account{
		ID:          uuid.New(),
		UserID:      user.ID,
		AccountType: domain.AccountTypeSavings,
		Currency:    "USD",
		Balance:     0,
		Status:      domain.AccountStatusActive,
	}
	err = s.store.RunInTx(ctx, func(r *repository.Repository) error {
		if err := r.CreateUser(ctx, user); err != nil {
			return err
		}
		number, err := generateAccountNumber(ctx, r.AccountNumberExists)
		if err != nil {
			return err
		}
		account.AccountNumber = number
		return r.CreateAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	return &RegistrationResult{User: *user, Account: *account}, nil
}

// Authenticate verifies a username/password pair and returns the user.
// Unknown users and bad passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Repo().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, mapLedgerError(err)
	}
	if !user.IsActive {
		return nil, models.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword swaps a user's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	repo := s.store.Repo()
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return mapLedgerError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return models.ErrInvalidCredentials
	}
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return mapLedgerError(repo.UpdateUserPassword(ctx, userID, string(hash)))
}
