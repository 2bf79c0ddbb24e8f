package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"product-manager/internal/clock"
	"product-manager/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validAddRequest() model.ProductAddRequest {
	return model.ProductAddRequest{
		Name:             "Phone",
		ManufacturePhone: "0123456789",
		ManufactureEmail: "maker@gmail.com",
		Count:            5,
	}
}

// echoAdd returns the product handed to Add unchanged.
func echoAdd(args mock.Arguments) *model.Product {
	p := args.Get(1).(model.Product)
	return &p
}

func TestProductAdderService_AddProduct(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 8, 30, 0, 123456789, time.UTC)

	t.Run("Success stamps id and date", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		var stored model.Product
		repo.On("Add", ctx, mock.AnythingOfType("model.Product")).
			Run(func(args mock.Arguments) { stored = *echoAdd(args) }).
			Return(func(ctx context.Context, p model.Product) *model.Product { return &p }, nil)

		req := validAddRequest()
		result, err := svc.AddProduct(ctx, &req)
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.NotEqual(t, uuid.Nil, stored.ID)
		assert.Equal(t, now.Truncate(time.Millisecond), stored.Date)
		assert.Equal(t, stored.ID, result.ID)
		assert.Equal(t, "Phone", result.Name)
		assert.True(t, result.IsAvailable)
	})

	t.Run("Nil request", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		result, err := svc.AddProduct(ctx, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrArgument)
		assert.Nil(t, result)
	})

	t.Run("Invalid request is not stored", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		req := validAddRequest()
		req.Count = 0
		req.ManufactureEmail = "maker@example.com"

		result, err := svc.AddProduct(ctx, &req)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Nil(t, result)

		var verr *model.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Len(t, verr.Violations, 2)
		repo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	})

	t.Run("Repository error", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())
		repo.On("Add", ctx, mock.AnythingOfType("model.Product")).Return(nil, errors.New("database error"))

		req := validAddRequest()
		result, err := svc.AddProduct(ctx, &req)
		require.Error(t, err)
		assert.Nil(t, result)
	})

	t.Run("Conflict is preserved", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())
		repo.On("Add", ctx, mock.AnythingOfType("model.Product")).
			Return(nil, model.NewConflictError("product already exists"))

		req := validAddRequest()
		_, err := svc.AddProduct(ctx, &req)
		assert.ErrorIs(t, err, model.ErrConflict)
	})
}

func TestProductAdderService_AddProducts(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

	t.Run("Nil list", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		result, err := svc.AddProducts(ctx, nil)
		assert.ErrorIs(t, err, model.ErrArgument)
		assert.Nil(t, result)
	})

	t.Run("Empty list returns empty without storing", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		result, err := svc.AddProducts(ctx, []model.ProductAddRequest{})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Empty(t, result)
		repo.AssertNotCalled(t, "AddMany", mock.Anything, mock.Anything)
	})

	t.Run("One invalid request rejects the whole batch", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		bad := validAddRequest()
		bad.Name = ""

		result, err := svc.AddProducts(ctx, []model.ProductAddRequest{validAddRequest(), bad})
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
		assert.Contains(t, err.Error(), "product 1")
		assert.Nil(t, result)
		repo.AssertNotCalled(t, "AddMany", mock.Anything, mock.Anything)
	})

	t.Run("Success assigns distinct ids", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductAdderService(repo, clock.NewMockClock(now), zerolog.Nop())

		repo.On("AddMany", ctx, mock.MatchedBy(func(ps []model.Product) bool {
			return len(ps) == 2 && ps[0].ID != ps[1].ID && ps[0].Date.Equal(now)
		})).Return(func(ctx context.Context, ps []model.Product) []model.Product { return ps }, nil)

		second := validAddRequest()
		second.Name = "Tablet"

		result, err := svc.AddProducts(ctx, []model.ProductAddRequest{validAddRequest(), second})
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, "Tablet", result[1].Name)
		repo.AssertExpectations(t)
	})
}
