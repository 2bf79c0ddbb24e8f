package model

import (
	"time"

	"github.com/google/uuid"
)

// Outbox event types.
const (
	EventProductsUpserted = "products.upserted"
	EventProductsDeleted  = "products.deleted"
)

// Outbox event statuses.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusCompleted = "completed"
	OutboxStatusFailed    = "failed"
)

// OutboxEvent records that a set of products changed in the primary store and
// the mirror has to catch up.
type OutboxEvent struct {
	ID          int64       `db:"id"`
	EventType   string      `db:"event_type"`
	ProductIDs  []uuid.UUID `db:"product_ids"`
	Status      string      `db:"status"`
	RetryCount  int         `db:"retry_count"`
	LastError   *string     `db:"last_error"`
	CreatedAt   time.Time   `db:"created_at"`
	ProcessedAt *time.Time  `db:"processed_at"`
}
