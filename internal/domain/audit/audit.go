// Package audit records the history of quotes and invoices.
package audit

import (
	"context"
	"encoding/json"
	"time"

	appctx "renodevis/internal/core/context"
	"renodevis/internal/core/id"
)

// Action is the kind of change an audit record describes.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionStatus Action = "status"
	ActionDelete Action = "delete"
)

// Entity types.
const (
	EntityQuote   = "quote"
	EntityInvoice = "invoice"
)

// Record is one entry of a document's history.
type Record struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   id.ID           `json:"entity_id"`
	Action     Action          `json:"action"`
	UserID     string          `json:"user_id,omitempty"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Recorder persists and reads audit records. Log runs inside the caller's
// transaction when there is one.
type Recorder interface {
	Log(ctx context.Context, entityType string, entityID id.ID, action Action, snapshot any) error
	History(ctx context.Context, entityType string, entityID id.ID) ([]Record, error)
}

// NopRecorder discards every record.
type NopRecorder struct{}

func (NopRecorder) Log(context.Context, string, id.ID, Action, any) error { return nil }

func (NopRecorder) History(context.Context, string, id.ID) ([]Record, error) { return nil, nil }

// Author is implemented by documents carrying CreatedBy/UpdatedBy fields.
type Author interface {
	SetCreatedBy(string)
	SetUpdatedBy(string)
}

// EnrichCreatedBy stamps both authors from the request user. No-op without one.
func EnrichCreatedBy(ctx context.Context, e Author) {
	if userID := appctx.GetUserID(ctx); userID != "" {
		e.SetCreatedBy(userID)
	}
}

// EnrichUpdatedBy stamps the last author from the request user.
func EnrichUpdatedBy(ctx context.Context, e Author) {
	if userID := appctx.GetUserID(ctx); userID != "" {
		e.SetUpdatedBy(userID)
	}
}
