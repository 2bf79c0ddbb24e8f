package repository

import (
	"context"
	"errors"
	"fmt"

	"product-manager/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const outboxColumns = `id, event_type, product_ids, status, retry_count, last_error, created_at, processed_at`

// PostgresOutboxRepository stores pending mirror updates next to the products
// they describe, so both commit in the same transaction.
type PostgresOutboxRepository struct {
	db     DBTX
	logger zerolog.Logger
}

var _ OutboxRepository = (*PostgresOutboxRepository)(nil)

// NewPostgresOutboxRepository creates a PostgreSQL-backed outbox.
func NewPostgresOutboxRepository(db DBTX, logger zerolog.Logger) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{
		db:     db,
		logger: logger.With().Str("repository", "outbox").Logger(),
	}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostgresOutboxRepository) WithTx(tx pgx.Tx) *PostgresOutboxRepository {
	return &PostgresOutboxRepository{db: tx, logger: r.logger}
}

// Enqueue records a pending event and returns its id.
func (r *PostgresOutboxRepository) Enqueue(ctx context.Context, eventType string, productIDs []uuid.UUID) (int64, error) {
	query := `
		INSERT INTO product_outbox (event_type, product_ids, status)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, eventType, productIDs, model.OutboxStatusPending).Scan(&id); err != nil {
		r.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to enqueue outbox event")
		return 0, fmt.Errorf("failed to enqueue outbox event: %w", err)
	}

	r.logger.Debug().
		Int64("event_id", id).
		Str("event_type", eventType).
		Int("count", len(productIDs)).
		Msg("outbox event enqueued")

	return id, nil
}

// Get returns an event by id, or nil when it does not exist.
func (r *PostgresOutboxRepository) Get(ctx context.Context, id int64) (*model.OutboxEvent, error) {
	query := `SELECT ` + outboxColumns + ` FROM product_outbox WHERE id = $1`

	event, err := scanOutboxEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query outbox event: %w", err)
	}

	return event, nil
}

// FetchPending returns up to limit pending events, oldest first.
func (r *PostgresOutboxRepository) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	query := `
		SELECT ` + outboxColumns + `
		FROM product_outbox
		WHERE status = $1
		ORDER BY id
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, model.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query pending outbox events")
		return nil, fmt.Errorf("failed to query pending outbox events: %w", err)
	}
	defer rows.Close()

	events := make([]model.OutboxEvent, 0)
	for rows.Next() {
		event, err := scanOutboxEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox events: %w", err)
	}

	return events, nil
}

// MarkCompleted flags an event as delivered.
func (r *PostgresOutboxRepository) MarkCompleted(ctx context.Context, id int64) error {
	query := `
		UPDATE product_outbox
		SET status = $2, processed_at = NOW(), last_error = NULL
		WHERE id = $1
	`

	if _, err := r.db.Exec(ctx, query, id, model.OutboxStatusCompleted); err != nil {
		r.logger.Error().Err(err).Int64("event_id", id).Msg("failed to complete outbox event")
		return fmt.Errorf("failed to complete outbox event: %w", err)
	}

	return nil
}

// MarkRetry increments the retry counter of a pending event and stores the
// error. Events that are no longer pending are left untouched and their
// current status is returned.
func (r *PostgresOutboxRepository) MarkRetry(ctx context.Context, id int64, lastError string, maxRetries int) (string, error) {
	query := `
		UPDATE product_outbox
		SET retry_count = retry_count + 1,
		    last_error = $2,
		    status = CASE WHEN retry_count + 1 >= $3 THEN $4 ELSE status END
		WHERE id = $1 AND status = $5
		RETURNING status
	`

	var status string
	err := r.db.QueryRow(ctx, query, id, lastError, maxRetries, model.OutboxStatusFailed, model.OutboxStatusPending).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.status(ctx, id)
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("event_id", id).Msg("failed to record outbox retry")
		return "", fmt.Errorf("failed to record outbox retry: %w", err)
	}

	return status, nil
}

func (r *PostgresOutboxRepository) status(ctx context.Context, id int64) (string, error) {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM product_outbox WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", model.NewNotFoundError("outbox event %d not found", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read outbox event status: %w", err)
	}
	return status, nil
}

// CountPending returns the number of events not yet delivered.
func (r *PostgresOutboxRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM product_outbox WHERE status = $1`, model.OutboxStatusPending).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending outbox events: %w", err)
	}
	return count, nil
}

func scanOutboxEvent(row pgx.Row) (*model.OutboxEvent, error) {
	var e model.OutboxEvent
	err := row.Scan(
		&e.ID,
		&e.EventType,
		&e.ProductIDs,
		&e.Status,
		&e.RetryCount,
		&e.LastError,
		&e.CreatedAt,
		&e.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
