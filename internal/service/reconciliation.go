package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/banking-core/internal/observability"
	"go.uber.org/zap"
)

// ReconciliationService verifies ledger integrity invariants: the
// signed amounts of all transfer legs must net to zero, overall and
// per currency.
type ReconciliationService struct {
	store Store
}

// NewReconciliationService creates a reconciliation service.
func NewReconciliationService(store Store) *ReconciliationService {
	return &ReconciliationService{store: store}
}

// Run checks the transfer conservation invariant across the ledger.
// An imbalance is reported, not repaired.
func (s *ReconciliationService) Run(ctx context.Context) error {
	repo := s.store.Repo()
	net, err := repo.TransferNet(ctx)
	if err != nil {
		return fmt.Errorf("run transfer net query: %w", err)
	}

	if net != 0 {
		observability.IncrementLedgerImbalance("ALL")
		zap.L().Error("CRITICAL: transfer imbalance detected", zap.Int64("net_micros", net))

		imbalances, byCurrencyErr := repo.TransferNetByCurrency(ctx)
		if byCurrencyErr == nil {
			for _, row := range imbalances {
				observability.IncrementLedgerImbalance(row.Currency)
				zap.L().Error("transfer imbalance by currency", zap.String("currency", row.Currency), zap.Int64("net_micros", row.NetAmount))
			}
		} else {
			zap.L().Error("failed to load currency imbalances", zap.Error(byCurrencyErr))
		}
		return nil
	}

	zap.L().Info("ledger balanced")
	return nil
}
