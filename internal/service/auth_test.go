package service_test

import (
	"context"
	"testing"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/ayo6706/banking-core/internal/service"
	"github.com/ayo6706/banking-core/internal/testutil/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixtures(t *testing.T) (*repository.Store, *service.AuthService) {
	t.Helper()
	pool := testdb.Connect(t)
	store := repository.NewStore(pool)
	return store, service.NewAuthService(store)
}

func TestRegister(t *testing.T) {
	_, auth := newAuthFixtures(t)
	ctx := context.Background()

	result, err := auth.Register(ctx, "alice", "password1", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.User.Username)
	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.NotEqual(t, "password1", result.User.PasswordHash)

	// A default savings account comes with registration.
	assert.Equal(t, result.User.ID, result.Account.UserID)
	assert.Equal(t, domain.AccountTypeSavings, result.Account.AccountType)
	assert.Equal(t, "USD", result.Account.Currency)
	assert.Equal(t, int64(0), result.Account.Balance)
}

func TestRegisterValidation(t *testing.T) {
	_, auth := newAuthFixtures(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "ab", "password1", "")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = auth.Register(ctx, "alice", "short", "")
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = auth.Register(ctx, "alice", "password1", "not-an-email")
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	_, auth := newAuthFixtures(t)
	ctx := context.Background()

	_, err := auth.Register(ctx, "bob", "password1", "")
	require.NoError(t, err)

	user, err := auth.Authenticate(ctx, "bob", "password1")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = auth.Authenticate(ctx, "bob", "wrongpass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	// Unknown users get the same error as bad passwords.
	_, err = auth.Authenticate(ctx, "nobody", "password1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	_, auth := newAuthFixtures(t)
	ctx := context.Background()

	result, err := auth.Register(ctx, "carol", "password1", "")
	require.NoError(t, err)

	err = auth.ChangePassword(ctx, result.User.ID, "wrongpass", "password2")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	require.NoError(t, auth.ChangePassword(ctx, result.User.ID, "password1", "password2"))

	_, err = auth.Authenticate(ctx, "carol", "password1")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = auth.Authenticate(ctx, "carol", "password2")
	assert.NoError(t, err)

	err = auth.ChangePassword(ctx, uuid.New(), "password1", "password2")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
