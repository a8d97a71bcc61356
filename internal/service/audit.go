package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/banking-core/internal/repository"
	"github.com/google/uuid"
)

// AuditService writes immutable audit trail entries for lifecycle
// changes. It always runs inside the caller's transaction so an audit
// row never exists without the change it describes.
type AuditService struct {
	store Store
}

func NewAuditService(store Store) *AuditService {
	return &AuditService{store: store}
}

// Write stores a single immutable audit record.
func (s *AuditService) Write(ctx context.Context, r *repository.Repository, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string) error {
	if err := r.InsertAuditLog(ctx, entityType, entityID, actorID, action, prevState, nextState); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
