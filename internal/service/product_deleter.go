package service

import (
	"context"
	"fmt"
	"time"

	"product-manager/internal/archive"
	"product-manager/internal/model"
	"product-manager/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productDeleterService implements ProductDeleterService.
type productDeleterService struct {
	products repository.ProductRepository
	archiver archive.Archiver
	logger   zerolog.Logger
}

// NewProductDeleterService creates a new product deleter service. When
// archiver is not nil, products removed by DeleteProductsBeforeThan are
// archived first.
func NewProductDeleterService(products repository.ProductRepository, archiver archive.Archiver, logger zerolog.Logger) ProductDeleterService {
	return &productDeleterService{
		products: products,
		archiver: archiver,
		logger:   logger.With().Str("service", "product_deleter").Logger(),
	}
}

func (s *productDeleterService) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, model.NewArgumentError("product id is required")
	}

	removed, err := s.products.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	if !removed {
		return false, model.NewNotFoundError("product %s not found", id)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	return true, nil
}

func (s *productDeleterService) DeleteProducts(ctx context.Context, products []model.ProductResponse) (bool, error) {
	if len(products) == 0 {
		return false, model.NewArgumentError("products to delete are required")
	}

	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		if p.ID != uuid.Nil {
			ids = append(ids, p.ToProduct().ID)
		}
	}

	if len(ids) == 0 {
		return false, model.NewArgumentError("no valid products to delete")
	}

	removed, err := s.products.DeleteMany(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete products")
		return false, fmt.Errorf("failed to delete products: %w", err)
	}

	s.logger.Info().Int("count", len(ids)).Bool("removed", removed).Msg("products deleted")
	return removed, nil
}

func (s *productDeleterService) DeleteProductsBeforeThan(ctx context.Context, cutoff time.Time) (bool, error) {
	if cutoff.IsZero() || !cutoff.Before(model.MaxDate) {
		return false, model.NewArgumentError("invalid cutoff date %s", cutoff.Format(time.RFC3339))
	}

	all, err := s.products.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list products for cutoff deletion")
		return false, fmt.Errorf("failed to list products: %w", err)
	}

	var expired []model.Product
	for _, p := range all {
		if p.Date.Before(cutoff) {
			expired = append(expired, p)
		}
	}

	if len(expired) == 0 {
		s.logger.Debug().Time("cutoff", cutoff).Msg("no products before cutoff")
		return false, nil
	}

	if s.archiver != nil {
		location, err := s.archiver.Archive(ctx, expired)
		if err != nil {
			s.logger.Error().Err(err).Int("count", len(expired)).Msg("failed to archive products, nothing deleted")
			return false, fmt.Errorf("failed to archive products: %w", err)
		}
		s.logger.Info().Str("location", location).Int("count", len(expired)).Msg("products archived")
	}

	ids := make([]uuid.UUID, 0, len(expired))
	for _, p := range expired {
		ids = append(ids, p.ID)
	}

	removed, err := s.products.DeleteMany(ctx, ids)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to delete products before cutoff")
		return false, fmt.Errorf("failed to delete products: %w", err)
	}

	s.logger.Info().
		Time("cutoff", cutoff).
		Int("count", len(ids)).
		Msg("products before cutoff deleted")

	return removed, nil
}
