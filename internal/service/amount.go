package service

import (
	"fmt"
	"strings"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/shopspring/decimal"
)

// maxAmountScale is the finest granularity the ledger stores (micros).
const maxAmountScale = 6

// ParseAmount applies the shared amount policy: the raw value must
// parse as a decimal, be strictly positive, fit within micros
// precision, and not exceed the configured ceiling. It returns the
// amount in micros or an error wrapping models.ErrInvalidAmount with a
// human-readable reason.
func ParseAmount(raw string, ceiling decimal.Decimal) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: amount is required", models.ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount format", models.ErrInvalidAmount)
	}
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be greater than 0", models.ErrInvalidAmount)
	}
	if !amount.Mul(decimal.New(1, maxAmountScale)).IsInteger() {
		return 0, fmt.Errorf("%w: amount precision exceeds %d decimal places", models.ErrInvalidAmount, maxAmountScale)
	}
	if amount.GreaterThan(ceiling) {
		return 0, fmt.Errorf("%w: amount cannot exceed %s", models.ErrInvalidAmount, ceiling.String())
	}
	return domain.FromDecimal(amount), nil
}
