package repository

import (
	"context"
	"strings"

	"product-manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// productStore writes to PostgreSQL and, when a mirror is configured, records
// an outbox event in the same transaction before handing it to the replicator.
type productStore struct {
	db         TxBeginner
	primary    *PostgresProductRepository
	outbox     *PostgresOutboxRepository
	mirror     ProductMirror
	replicator Replicator
	logger     zerolog.Logger
}

// NewProductStore creates the product facade. mirror may be nil, in which case
// every read and write uses the primary store and no outbox events are
// recorded. replicator is required when mirror is set.
func NewProductStore(
	db TxBeginner,
	primary *PostgresProductRepository,
	outbox *PostgresOutboxRepository,
	mirror ProductMirror,
	replicator Replicator,
	logger zerolog.Logger,
) ProductRepository {
	return &productStore{
		db:         db,
		primary:    primary,
		outbox:     outbox,
		mirror:     mirror,
		replicator: replicator,
		logger:     logger.With().Str("repository", "product_store").Logger(),
	}
}

func (s *productStore) reader() ProductStoreAdapter {
	if s.mirror != nil {
		return s.mirror
	}
	return s.primary
}

func (s *productStore) GetAll(ctx context.Context) ([]model.Product, error) {
	return s.reader().ListAll(ctx)
}

func (s *productStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.reader().Get(ctx, id)
}

func (s *productStore) GetByName(ctx context.Context, name string) ([]model.Product, error) {
	return s.reader().FindByName(ctx, name)
}

func (s *productStore) GetByManufacturer(ctx context.Context, email string) ([]model.Product, error) {
	return s.reader().FindByManufacturer(ctx, email)
}

func (s *productStore) Add(ctx context.Context, product model.Product) (*model.Product, error) {
	return writeThrough(ctx, s, "add product", model.EventProductsUpserted,
		func(repo *PostgresProductRepository) (*model.Product, []uuid.UUID, error) {
			added, err := repo.Add(ctx, product)
			if err != nil {
				return nil, nil, err
			}
			return added, []uuid.UUID{added.ID}, nil
		})
}

func (s *productStore) AddMany(ctx context.Context, products []model.Product) ([]model.Product, error) {
	return writeThrough(ctx, s, "add products", model.EventProductsUpserted,
		func(repo *PostgresProductRepository) ([]model.Product, []uuid.UUID, error) {
			added, err := repo.AddMany(ctx, products)
			if err != nil {
				return nil, nil, err
			}
			ids := make([]uuid.UUID, 0, len(added))
			for _, p := range added {
				ids = append(ids, p.ID)
			}
			return added, ids, nil
		})
}

func (s *productStore) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	return writeThrough(ctx, s, "update product", model.EventProductsUpserted,
		func(repo *PostgresProductRepository) (*model.Product, []uuid.UUID, error) {
			updated, err := repo.Update(ctx, product)
			if err != nil || updated == nil {
				return nil, nil, err
			}
			return updated, []uuid.UUID{updated.ID}, nil
		})
}

func (s *productStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	return writeThrough(ctx, s, "delete product", model.EventProductsDeleted,
		func(repo *PostgresProductRepository) (bool, []uuid.UUID, error) {
			removed, err := repo.Delete(ctx, id)
			if err != nil || !removed {
				return false, nil, err
			}
			return true, []uuid.UUID{id}, nil
		})
}

func (s *productStore) DeleteMany(ctx context.Context, ids []uuid.UUID) (bool, error) {
	return writeThrough(ctx, s, "delete products", model.EventProductsDeleted,
		func(repo *PostgresProductRepository) (bool, []uuid.UUID, error) {
			removed, err := repo.DeleteMany(ctx, ids)
			if err != nil || !removed {
				return false, nil, err
			}
			return true, ids, nil
		})
}

func (s *productStore) IsOwnedBy(ctx context.Context, email, phone string, id uuid.UUID) (bool, error) {
	p, err := s.primary.Get(ctx, id)
	if err != nil || p == nil {
		return false, err
	}

	return strings.TrimSpace(p.ManufactureEmail) == strings.TrimSpace(email) &&
		strings.TrimSpace(p.ManufacturePhone) == strings.TrimSpace(phone), nil
}

// writeThrough runs fn against the primary store in a transaction. When fn
// reports affected ids and a mirror is configured, an outbox event is written
// in that transaction and delivered after commit. A failed delivery leaves the
// primary change in place and returns a *model.ReplicationError.
func writeThrough[T any](
	ctx context.Context,
	s *productStore,
	op, eventType string,
	fn func(repo *PostgresProductRepository) (T, []uuid.UUID, error),
) (T, error) {
	var zero T
	var event *model.OutboxEvent

	result, err := Transact(ctx, s.db, func(tx pgx.Tx) (T, error) {
		value, ids, err := fn(s.primary.WithTx(tx))
		if err != nil {
			return zero, err
		}
		if s.mirror == nil || len(ids) == 0 {
			return value, nil
		}

		eventID, err := s.outbox.WithTx(tx).Enqueue(ctx, eventType, ids)
		if err != nil {
			return zero, err
		}
		event = &model.OutboxEvent{
			ID:         eventID,
			EventType:  eventType,
			ProductIDs: ids,
			Status:     model.OutboxStatusPending,
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	if event == nil {
		return result, nil
	}

	if err := s.replicator.Deliver(ctx, *event); err != nil {
		s.logger.Error().
			Err(err).
			Str("op", op).
			Int64("event_id", event.ID).
			Int("count", len(event.ProductIDs)).
			Msg("mirror update failed, outbox event left for relay")
		return zero, &model.ReplicationError{Op: op, EventID: event.ID, Err: err}
	}

	return result, nil
}
