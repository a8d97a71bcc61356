package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
)

const (
	digits       = "0123456789"
	alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// The identifier space makes collisions vanishingly rare; the bound
	// exists so an exhausted loop surfaces ErrDuplicateIdentifier
	// instead of spinning forever.
	maxGenerateAttempts = 64
)

type existsFunc func(ctx context.Context, value string) (bool, error)

// generateAccountNumber produces a unique fixed-length numeric account
// number. The exists check runs against the same transaction that will
// insert the row, so check and insert cannot race.
func generateAccountNumber(ctx context.Context, exists existsFunc) (string, error) {
	return generateUnique(ctx, digits, domain.AccountNumberLength, exists)
}

// generateReferenceNumber produces a unique fixed-length alphanumeric
// transaction reference.
func generateReferenceNumber(ctx context.Context, exists existsFunc) (string, error) {
	return generateUnique(ctx, alphanumeric, domain.ReferenceNumberLength, exists)
}

func generateUnique(ctx context.Context, charset string, length int, exists existsFunc) (string, error) {
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := randomString(charset, length)
		if err != nil {
			return "", fmt.Errorf("generate identifier: %w", err)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", models.ErrDuplicateIdentifier
}

func randomString(charset string, length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
