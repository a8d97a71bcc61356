package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertAuditLog appends one audit trail row. Rows are never updated or
// deleted.
func (r *Repository) InsertAuditLog(ctx context.Context, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string) error {
	query := `INSERT INTO audit_log (entity_type, entity_id, actor_id, action, prev_state, next_state, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NOW())`
	if _, err := r.db.Exec(ctx, query, entityType, entityID, actorID, action, prevState, nextState); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}
