package service

import (
	"context"

	"github.com/ayo6706/banking-core/internal/repository"
)

// Store defines the minimal data access contract required by services.
type Store interface {
	Repo() *repository.Repository
	RunInTx(ctx context.Context, fn func(r *repository.Repository) error) error
}
