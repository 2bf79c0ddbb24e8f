// Package replication brings the product mirror in line with the primary
// store by draining the outbox written alongside every product change.
package replication

import (
	"context"
	"fmt"
	"time"

	"product-manager/internal/model"
	"product-manager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config controls the relay loop.
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// Syncer delivers outbox events to the mirror. Delivery reads the current
// primary state of every id in the event, upserts what exists and deletes what
// does not, so an event can be delivered any number of times in any order.
type Syncer struct {
	primary repository.PrimaryReader
	mirror  repository.ProductMirror
	outbox  repository.OutboxRepository
	cfg     Config
	logger  zerolog.Logger
}

var _ repository.Replicator = (*Syncer)(nil)

// NewSyncer creates a new Syncer.
func NewSyncer(
	primary repository.PrimaryReader,
	mirror repository.ProductMirror,
	outbox repository.OutboxRepository,
	cfg Config,
	logger zerolog.Logger,
) *Syncer {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}

	return &Syncer{
		primary: primary,
		mirror:  mirror,
		outbox:  outbox,
		cfg:     cfg,
		logger:  logger.With().Str("component", "replication").Logger(),
	}
}

// Deliver applies one event to the mirror and records the outcome in the outbox.
func (s *Syncer) Deliver(ctx context.Context, event model.OutboxEvent) error {
	if err := s.reconcile(ctx, event.ProductIDs); err != nil {
		status, markErr := s.outbox.MarkRetry(ctx, event.ID, err.Error(), s.cfg.MaxRetries)
		if markErr != nil {
			s.logger.Error().Err(markErr).Int64("event_id", event.ID).Msg("failed to record delivery failure")
		} else if status == model.OutboxStatusFailed {
			s.logger.Error().
				Err(err).
				Int64("event_id", event.ID).
				Msg("outbox event exhausted its retries, run a resync to repair the mirror")
		}
		return fmt.Errorf("failed to deliver outbox event %d: %w", event.ID, err)
	}

	// The mirror is already correct here; a lost completion only causes a
	// harmless redelivery.
	if err := s.outbox.MarkCompleted(ctx, event.ID); err != nil {
		s.logger.Warn().Err(err).Int64("event_id", event.ID).Msg("failed to mark outbox event completed")
	}

	s.logger.Debug().
		Int64("event_id", event.ID).
		Str("event_type", event.EventType).
		Int("count", len(event.ProductIDs)).
		Msg("outbox event delivered")

	return nil
}

func (s *Syncer) reconcile(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	current, err := s.primary.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to read primary state: %w", err)
	}

	present := make(map[uuid.UUID]struct{}, len(current))
	for _, p := range current {
		present[p.ID] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}

	if err := s.mirror.Upsert(ctx, current); err != nil {
		return err
	}

	if len(missing) > 0 {
		if _, err := s.mirror.DeleteMany(ctx, missing); err != nil {
			return err
		}
	}

	return nil
}

// DrainOnce delivers up to one batch of pending events and returns how many
// were delivered.
func (s *Syncer) DrainOnce(ctx context.Context) (int, error) {
	events, err := s.outbox.FetchPending(ctx, s.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := s.Deliver(ctx, event); err != nil {
			s.logger.Warn().Err(err).Int64("event_id", event.ID).Msg("relay delivery failed")
			continue
		}
		delivered++
	}

	if len(events) > 0 {
		s.logger.Info().
			Int("fetched", len(events)).
			Int("delivered", delivered).
			Msg("outbox batch drained")
	}

	return delivered, nil
}

// Run drains the outbox on every tick until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Int("batch_size", s.cfg.BatchSize).
		Msg("replication relay started")

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("replication relay stopped")
			return
		case <-t.C:
			if _, err := s.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("failed to drain outbox")
			}
		}
	}
}

// ResyncResult summarises a full mirror rebuild.
type ResyncResult struct {
	Upserted int
	Removed  int
}

// Resync copies every primary product into the mirror and removes mirror
// documents the primary no longer has.
func (s *Syncer) Resync(ctx context.Context) (ResyncResult, error) {
	var result ResyncResult

	products, err := s.primary.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list primary products: %w", err)
	}

	if err := s.mirror.Upsert(ctx, products); err != nil {
		return result, err
	}
	result.Upserted = len(products)

	mirrored, err := s.mirror.IDs(ctx)
	if err != nil {
		return result, err
	}

	inPrimary := make(map[uuid.UUID]struct{}, len(products))
	for _, p := range products {
		inPrimary[p.ID] = struct{}{}
	}

	var stale []uuid.UUID
	for _, id := range mirrored {
		if _, ok := inPrimary[id]; !ok {
			stale = append(stale, id)
		}
	}

	if len(stale) > 0 {
		if _, err := s.mirror.DeleteMany(ctx, stale); err != nil {
			return result, err
		}
		result.Removed = len(stale)
	}

	s.logger.Info().
		Int("upserted", result.Upserted).
		Int("removed", result.Removed).
		Msg("mirror resynchronised")

	return result, nil
}
