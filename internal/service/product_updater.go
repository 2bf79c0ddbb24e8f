package service

import (
	"context"
	"fmt"

	"product-manager/internal/model"
	"product-manager/internal/repository"
	"product-manager/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productUpdaterService implements ProductUpdaterService.
type productUpdaterService struct {
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewProductUpdaterService creates a new product updater service.
func NewProductUpdaterService(products repository.ProductRepository, logger zerolog.Logger) ProductUpdaterService {
	return &productUpdaterService{
		products: products,
		logger:   logger.With().Str("service", "product_updater").Logger(),
	}
}

func (s *productUpdaterService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.ProductResponse, error) {
	if req == nil {
		return nil, model.NewArgumentError("product update request is required")
	}

	if id != req.ID {
		return nil, model.NewArgumentError("product id %s does not match request id %s", id, req.ID)
	}

	if err := validation.ValidateProductUpdate(*req); err != nil {
		s.logger.Debug().Err(err).Str("product_id", id.String()).Msg("product update request rejected")
		return nil, err
	}

	updated, err := s.products.Update(ctx, req.ToProduct())
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if updated == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product to update not found")
		return nil, nil
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	resp := model.NewProductResponse(*updated)
	return &resp, nil
}
