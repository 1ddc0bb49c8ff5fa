package postgres

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"renodevis/internal/core/apperror"
)

// IdempotencyStatus represents the state of an idempotent request.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// staleAfter is how long a pending key may stay unfinished before another
// request can take it over.
const staleAfter = time.Minute

// IdempotencyReplay is the stored HTTP response of a finished request.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore keeps Idempotency-Key records in sys_idempotency so that
// retried POSTs (quote creation, invoicing) do not create duplicates.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
	now       func() time.Time
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		txManager: txManager,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type idempotencyRow struct {
	inserted    bool
	userID      string
	operation   string
	status      IdempotencyStatus
	requestHash string
	response    []byte
	statusCode  *int
	contentType *string
	updatedAt   time.Time
}

// AcquireKey claims key for the request.
// It returns (nil, nil) when the caller owns the key and must run the
// request, a replay when the request already finished, and an error when
// the key is in flight or was used for a different request.
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := s.now()

	var row idempotencyRow
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET expires_at = GREATEST(sys_idempotency.expires_at, EXCLUDED.expires_at)
		RETURNING (xmax = 0), user_id, operation, status, request_hash, response, response_status, response_content_type, updated_at
	`, key, userID, operation, string(IdempotencyStatusPending), requestHash, now, now.Add(s.ttl)).Scan(
		&row.inserted, &row.userID, &row.operation, &row.status, &row.requestHash,
		&row.response, &row.statusCode, &row.contentType, &row.updatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	if row.inserted {
		return nil, nil
	}
	return s.resolve(ctx, key, userID, operation, requestHash, row)
}

func (s *IdempotencyStore) resolve(ctx context.Context, key, userID, operation, requestHash string, row idempotencyRow) (*IdempotencyReplay, error) {
	if row.userID != userID || row.operation != operation || row.requestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("operation", row.operation)
	}

	switch row.status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return row.replay(), nil
	}

	if s.now().Sub(row.updatedAt) <= staleAfter {
		return nil, apperror.NewIdempotencyConflict(key)
	}

	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency SET updated_at = $1
		WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
	`, s.now(), key, string(IdempotencyStatusPending), row.updatedAt)
	if err != nil {
		return nil, fmt.Errorf("reclaim stale key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return nil, nil
}

func (r idempotencyRow) replay() *IdempotencyReplay {
	out := &IdempotencyReplay{
		StatusCode:  http.StatusOK,
		ContentType: "application/json; charset=utf-8",
		Body:        r.response,
	}
	if r.statusCode != nil && *r.statusCode != 0 {
		out.StatusCode = *r.statusCode
	}
	if r.contentType != nil && *r.contentType != "" {
		out.ContentType = *r.contentType
	}
	return out
}

// CompleteKey stores the response of a successful request.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, resp IdempotencyReplay) error {
	return s.finish(ctx, key, IdempotencyStatusSuccess, resp)
}

// FailKey stores the response of a request that failed with a client error.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, resp IdempotencyReplay) error {
	return s.finish(ctx, key, IdempotencyStatusFailed, resp)
}

// ReleaseKey forgets a pending key so the request can be retried, used
// after server errors.
func (s *IdempotencyStore) ReleaseKey(ctx context.Context, key string) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency WHERE idempotency_key = $1 AND status = $2
	`, key, string(IdempotencyStatusPending))
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status IdempotencyStatus, resp IdempotencyReplay) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, string(status), resp.Body, resp.StatusCode, resp.ContentType, s.now(), key)
	if err != nil {
		return fmt.Errorf("finish idempotency key: %w", err)
	}
	return nil
}

// CleanupExpired removes expired idempotency records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		DELETE FROM sys_idempotency WHERE expires_at < $1
	`, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return result.RowsAffected(), nil
}
