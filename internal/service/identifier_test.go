package service

import (
	"context"
	"strings"
	"testing"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverExists(context.Context, string) (bool, error) { return false, nil }

func TestGenerateAccountNumber(t *testing.T) {
	number, err := generateAccountNumber(context.Background(), neverExists)
	require.NoError(t, err)
	assert.Len(t, number, domain.AccountNumberLength)
	for _, c := range number {
		assert.True(t, c >= '0' && c <= '9', "unexpected character %q", c)
	}
}

func TestGenerateReferenceNumber(t *testing.T) {
	ref, err := generateReferenceNumber(context.Background(), neverExists)
	require.NoError(t, err)
	assert.Len(t, ref, domain.ReferenceNumberLength)
	assert.Equal(t, strings.ToUpper(ref), ref)
}

func TestGenerateUniqueRetriesOnCollision(t *testing.T) {
	calls := 0
	exists := func(context.Context, string) (bool, error) {
		calls++
		return calls <= 3, nil
	}

	_, err := generateUnique(context.Background(), digits, 10, exists)
	require.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestGenerateUniqueExhaustsAttempts(t *testing.T) {
	alwaysTaken := func(context.Context, string) (bool, error) { return true, nil }

	_, err := generateUnique(context.Background(), digits, 10, alwaysTaken)
	assert.ErrorIs(t, err, models.ErrDuplicateIdentifier)
}

func TestGenerateUniquePropagatesExistsError(t *testing.T) {
	failing := func(context.Context, string) (bool, error) { return false, assert.AnError }

	_, err := generateUnique(context.Background(), digits, 10, failing)
	assert.ErrorIs(t, err, assert.AnError)
}
