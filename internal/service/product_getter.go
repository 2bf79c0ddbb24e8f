package service

import (
	"context"
	"fmt"
	"strings"

	"product-manager/internal/model"
	"product-manager/internal/repository"
	"product-manager/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productGetterService implements ProductGetterService.
type productGetterService struct {
	products repository.ProductRepository
	logger   zerolog.Logger
}

// NewProductGetterService creates a new product getter service.
func NewProductGetterService(products repository.ProductRepository, logger zerolog.Logger) ProductGetterService {
	return &productGetterService{
		products: products,
		logger:   logger.With().Str("service", "product_getter").Logger(),
	}
}

// GetAll retrieves every product ordered by date.
func (s *productGetterService) GetAll(ctx context.Context) ([]model.ProductResponse, error) {
	products, err := s.products.GetAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().Int("count", len(products)).Msg("retrieved products")

	return model.NewProductResponses(products), nil
}

// GetByID retrieves a single product by ID.
func (s *productGetterService) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductResponse, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, nil
	}

	resp := model.NewProductResponse(*product)
	return &resp, nil
}

func (s *productGetterService) GetByName(ctx context.Context, name string) ([]model.ProductResponse, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	products, err := s.products.GetByName(ctx, name)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to get products by name")
		return nil, fmt.Errorf("failed to get products by name: %w", err)
	}

	return model.NewProductResponses(products), nil
}

func (s *productGetterService) GetByManufacturer(ctx context.Context, email string) ([]model.ProductResponse, error) {
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}

	if err := validation.ValidateEmail(email); err != nil {
		s.logger.Debug().Err(err).Str("email", email).Msg("rejected manufacturer email")
		return nil, err
	}

	products, err := s.products.GetByManufacturer(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("failed to get products by manufacturer")
		return nil, fmt.Errorf("failed to get products by manufacturer: %w", err)
	}

	return model.NewProductResponses(products), nil
}

func (s *productGetterService) IsOwnedBy(ctx context.Context, email, phone string, id uuid.UUID) (bool, error) {
	owned, err := s.products.IsOwnedBy(ctx, email, phone, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to check product ownership")
		return false, fmt.Errorf("failed to check product ownership: %w", err)
	}
	return owned, nil
}
