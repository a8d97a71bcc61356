package repository

import (
	"context"
	"fmt"
)

// IdempotencyRecord mirrors one row of idempotency_keys. The durable
// row is the source of truth; Redis only caches finalized records.
type IdempotencyRecord struct {
	Key            string
	RequestHash    string
	Method         string
	Path           string
	ResponseStatus int32
	ResponseBody   []byte
	ContentType    string
	InProgress     bool
}

const idempotencyColumns = `idempotency_key, request_hash, method, path, COALESCE(response_status, 0), response_body, COALESCE(content_type, ''), in_progress`

func (r *Repository) GetIdempotencyKey(ctx context.Context, key string) (*IdempotencyRecord, error) {
	rec := &IdempotencyRecord{}
	query := `SELECT ` + idempotencyColumns + ` FROM idempotency_keys WHERE idempotency_key = $1`
	err := r.db.QueryRow(ctx, query, key).Scan(
		&rec.Key, &rec.RequestHash, &rec.Method, &rec.Path,
		&rec.ResponseStatus, &rec.ResponseBody, &rec.ContentType, &rec.InProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	return rec, nil
}

// ReserveIdempotencyKey claims a key for the in-flight request. It
// returns false without error when another request already holds it.
func (r *Repository) ReserveIdempotencyKey(ctx context.Context, key, requestHash, method, path string) (bool, error) {
	query := `INSERT INTO idempotency_keys (idempotency_key, request_hash, method, path, in_progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		ON CONFLICT (idempotency_key) DO NOTHING`
	tag, err := r.db.Exec(ctx, query, key, requestHash, method, path)
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) FinalizeIdempotencyKey(ctx context.Context, key, requestHash string, status int, body []byte, contentType string) (*IdempotencyRecord, error) {
	rec := &IdempotencyRecord{}
	query := `UPDATE idempotency_keys
		SET response_status = $1, response_body = $2, content_type = $3, in_progress = FALSE, updated_at = NOW()
		WHERE idempotency_key = $4 AND request_hash = $5
		RETURNING ` + idempotencyColumns
	err := r.db.QueryRow(ctx, query, status, body, contentType, key, requestHash).Scan(
		&rec.Key, &rec.RequestHash, &rec.Method, &rec.Path,
		&rec.ResponseStatus, &rec.ResponseBody, &rec.ContentType, &rec.InProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("finalize idempotency key: %w", err)
	}
	return rec, nil
}
