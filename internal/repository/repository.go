package repository

import (
	"context"

	"product-manager/internal/model"

	"github.com/google/uuid"
)

// ProductRepository is the single entry point services use for products. Reads
// come from the mirror when one is configured; writes always go to the primary
// store first.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]model.Product, error)

	// GetByID returns nil when the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByName returns nil for a blank name and an empty slice when nothing matches.
	GetByName(ctx context.Context, name string) ([]model.Product, error)

	// GetByManufacturer returns nil for a blank email and an empty slice when nothing matches.
	GetByManufacturer(ctx context.Context, email string) ([]model.Product, error)

	Add(ctx context.Context, product model.Product) (*model.Product, error)
	AddMany(ctx context.Context, products []model.Product) ([]model.Product, error)

	// Update returns nil when no product has the given id.
	Update(ctx context.Context, product model.Product) (*model.Product, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) (bool, error)

	// IsOwnedBy reports whether the product exists in the primary store and
	// belongs to the manufacturer with the given email and phone.
	IsOwnedBy(ctx context.Context, email, phone string, id uuid.UUID) (bool, error)
}

// ProductStoreAdapter is one concrete product store.
type ProductStoreAdapter interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Add(ctx context.Context, product model.Product) (*model.Product, error)
	AddMany(ctx context.Context, products []model.Product) ([]model.Product, error)
	Update(ctx context.Context, product model.Product) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteMany(ctx context.Context, ids []uuid.UUID) (bool, error)
	FindByName(ctx context.Context, name string) ([]model.Product, error)
	FindByManufacturer(ctx context.Context, email string) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
}

// ProductMirror is a secondary store kept in step with the primary through the outbox.
type ProductMirror interface {
	ProductStoreAdapter

	// Upsert replaces or inserts every product. Replaying it is harmless.
	Upsert(ctx context.Context, products []model.Product) error

	// IDs lists every mirrored product id.
	IDs(ctx context.Context) ([]uuid.UUID, error)
}

// PrimaryReader is the part of the primary store replication needs.
type PrimaryReader interface {
	GetMany(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
}

// OutboxRepository records product changes that still have to reach the mirror.
type OutboxRepository interface {
	Enqueue(ctx context.Context, eventType string, productIDs []uuid.UUID) (int64, error)
	Get(ctx context.Context, id int64) (*model.OutboxEvent, error)
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkCompleted(ctx context.Context, id int64) error

	// MarkRetry records a failed delivery and returns the resulting status,
	// which becomes failed once maxRetries attempts have been made.
	MarkRetry(ctx context.Context, id int64, lastError string, maxRetries int) (string, error)

	CountPending(ctx context.Context) (int, error)
}

// Replicator delivers a committed outbox event to the mirror.
type Replicator interface {
	Deliver(ctx context.Context, event model.OutboxEvent) error
}

// UserRepository stores manufacturer accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error

	// GetByEmail returns nil when no account uses the email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
