package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
	"renodevis/internal/domain/audit"
)

// CompressionAlgo specifies the compression algorithm used.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the snapshot size above which it is stored
// zstd-compressed.
const DefaultCompressThreshold = 8 * 1024

// AuditStore persists document history in sys_audit. It implements
// audit.Recorder.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	now               func() time.Time
}

// NewAuditStore creates a new audit store.
func NewAuditStore(txManager *TxManager) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: DefaultCompressThreshold,
		now:               func() time.Time { return time.Now().UTC() },
	}, nil
}

// Log records a snapshot of the entity after action.
func (s *AuditStore) Log(ctx context.Context, entityType string, entityID id.ID, action audit.Action, snapshot any) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	plain, compressed, algo := s.pack(raw)

	_, err = s.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_audit (
			id, entity_type, entity_id, action, user_id,
			snapshot, snapshot_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		id.New(), entityType, entityID, string(action), appctx.GetUserID(ctx),
		plain, compressed, string(algo), s.now(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// History returns every record of an entity, oldest first.
func (s *AuditStore) History(ctx context.Context, entityType string, entityID id.ID) ([]audit.Record, error) {
	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT id, entity_type, entity_id, action, user_id,
		       snapshot, snapshot_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
	`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records := make([]audit.Record, 0)
	for rows.Next() {
		var (
			r          audit.Record
			action     string
			plain      []byte
			compressed []byte
			algo       string
		)
		if err := rows.Scan(
			&r.ID, &r.EntityType, &r.EntityID, &action, &r.UserID,
			&plain, &compressed, &algo, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		r.Action = audit.Action(action)

		r.Snapshot, err = s.unpack(plain, compressed, CompressionAlgo(algo))
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// pack returns the snapshot either as-is or zstd-compressed.
func (s *AuditStore) pack(raw []byte) (plain, compressed []byte, algo CompressionAlgo) {
	if len(raw) <= s.compressThreshold {
		return raw, nil, CompressionNone
	}
	return nil, s.encoder.EncodeAll(raw, nil), CompressionZstd
}

func (s *AuditStore) unpack(plain, compressed []byte, algo CompressionAlgo) (json.RawMessage, error) {
	if algo != CompressionZstd || len(compressed) == 0 {
		return plain, nil
	}
	out, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	return out, nil
}

var _ audit.Recorder = (*AuditStore)(nil)
