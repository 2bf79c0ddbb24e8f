package service

import (
	"context"
	"fmt"
	"time"

	"product-manager/internal/clock"
	"product-manager/internal/model"
	"product-manager/internal/repository"
	"product-manager/internal/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productAdderService implements ProductAdderService.
type productAdderService struct {
	products repository.ProductRepository
	clock    clock.Clock
	logger   zerolog.Logger
}

// NewProductAdderService creates a new product adder service.
func NewProductAdderService(products repository.ProductRepository, clk clock.Clock, logger zerolog.Logger) ProductAdderService {
	return &productAdderService{
		products: products,
		clock:    clk,
		logger:   logger.With().Str("service", "product_adder").Logger(),
	}
}

// AddProduct validates the request, stamps a new id and the current date,
// and stores the product.
func (s *productAdderService) AddProduct(ctx context.Context, req *model.ProductAddRequest) (*model.ProductResponse, error) {
	if req == nil {
		return nil, model.NewArgumentError("product add request is required")
	}

	if err := validation.ValidateProductAdd(*req); err != nil {
		s.logger.Debug().Err(err).Msg("product add request rejected")
		return nil, err
	}

	added, err := s.products.Add(ctx, s.newProduct(*req))
	if err != nil {
		s.logger.Error().Err(err).Str("email", req.ManufactureEmail).Msg("failed to add product")
		return nil, fmt.Errorf("failed to add product: %w", err)
	}

	s.logger.Info().
		Str("product_id", added.ID.String()).
		Str("email", added.ManufactureEmail).
		Msg("product added")

	resp := model.NewProductResponse(*added)
	return &resp, nil
}

func (s *productAdderService) AddProducts(ctx context.Context, reqs []model.ProductAddRequest) ([]model.ProductResponse, error) {
	if reqs == nil {
		return nil, model.NewArgumentError("product add requests are required")
	}

	products := make([]model.Product, 0, len(reqs))
	for i, req := range reqs {
		if err := validation.ValidateProductAdd(req); err != nil {
			s.logger.Debug().Err(err).Int("index", i).Msg("product add request rejected")
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		products = append(products, s.newProduct(req))
	}

	if len(products) == 0 {
		return []model.ProductResponse{}, nil
	}

	added, err := s.products.AddMany(ctx, products)
	if err != nil {
		s.logger.Error().Err(err).Int("count", len(products)).Msg("failed to add products")
		return nil, fmt.Errorf("failed to add products: %w", err)
	}

	s.logger.Info().Int("count", len(added)).Msg("products added")

	return model.NewProductResponses(added), nil
}

func (s *productAdderService) newProduct(req model.ProductAddRequest) model.Product {
	p := req.ToProduct()
	p.ID = uuid.New()
	// The mirror stores millisecond precision.
	p.Date = s.clock.Now().UTC().Truncate(time.Millisecond)
	return p
}
