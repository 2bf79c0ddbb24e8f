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

func TestProductDeleterService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())
		repo.On("Delete", ctx, id).Return(true, nil)

		removed, err := svc.DeleteProduct(ctx, id)
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("Nil id", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())

		removed, err := svc.DeleteProduct(ctx, uuid.Nil)
		assert.ErrorIs(t, err, model.ErrArgument)
		assert.False(t, removed)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("Missing product", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())
		repo.On("Delete", ctx, id).Return(false, nil)

		removed, err := svc.DeleteProduct(ctx, id)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.False(t, removed)
	})

	t.Run("Replication failure is surfaced", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())
		repo.On("Delete", ctx, id).Return(false, &model.ReplicationError{Op: "delete", EventID: 4, Err: errors.New("mirror down")})

		_, err := svc.DeleteProduct(ctx, id)
		assert.ErrorIs(t, err, model.ErrReplication)
	})
}

func TestProductDeleterService_DeleteProducts(t *testing.T) {
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	tests := []struct {
		name       string
		input      []model.ProductResponse
		setupMock  func(repo *MockProductRepository)
		expectKind error
		expected   bool
	}{
		{
			name:       "Nil list",
			input:      nil,
			expectKind: model.ErrArgument,
		},
		{
			name:       "Empty list",
			input:      []model.ProductResponse{},
			expectKind: model.ErrArgument,
		},
		{
			name:       "Only nil ids",
			input:      []model.ProductResponse{{Name: "Phone"}},
			expectKind: model.ErrArgument,
		},
		{
			name:  "Nil ids are skipped",
			input: []model.ProductResponse{{ID: first}, {}, {ID: second}},
			setupMock: func(repo *MockProductRepository) {
				repo.On("DeleteMany", ctx, []uuid.UUID{first, second}).Return(true, nil)
			},
			expected: true,
		},
		{
			name:  "Nothing removed",
			input: []model.ProductResponse{{ID: first}},
			setupMock: func(repo *MockProductRepository) {
				repo.On("DeleteMany", ctx, []uuid.UUID{first}).Return(false, nil)
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}
			svc := NewProductDeleterService(repo, nil, zerolog.Nop())

			removed, err := svc.DeleteProducts(ctx, tt.input)

			if tt.expectKind != nil {
				assert.ErrorIs(t, err, tt.expectKind)
				assert.False(t, removed)
				repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, removed)
			repo.AssertExpectations(t)
		})
	}
}

func TestProductDeleterService_DeleteProductsBeforeThan(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)

	twoDaysAgo := testProduct("Old", 1, clk.Now().AddDate(0, 0, -2))
	yesterday := testProduct("Recent", 1, clk.Now().AddDate(0, 0, -1))
	tomorrow := testProduct("Future", 1, clk.Now().AddDate(0, 0, 1))
	all := []model.Product{twoDaysAgo, yesterday, tomorrow}

	t.Run("Removes only products strictly before the cutoff", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())

		repo.On("GetAll", ctx).Return(all, nil)
		repo.On("DeleteMany", ctx, []uuid.UUID{twoDaysAgo.ID}).Return(true, nil)

		removed, err := svc.DeleteProductsBeforeThan(ctx, yesterday.Date)
		require.NoError(t, err)
		assert.True(t, removed)
		repo.AssertExpectations(t)
	})

	t.Run("Cutoff at now removes the two past products", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())

		repo.On("GetAll", ctx).Return(all, nil)
		repo.On("DeleteMany", ctx, []uuid.UUID{twoDaysAgo.ID, yesterday.ID}).Return(true, nil)

		removed, err := svc.DeleteProductsBeforeThan(ctx, clk.Now())
		require.NoError(t, err)
		assert.True(t, removed)
	})

	t.Run("Nothing before cutoff", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())

		repo.On("GetAll", ctx).Return(all, nil)

		removed, err := svc.DeleteProductsBeforeThan(ctx, twoDaysAgo.Date)
		require.NoError(t, err)
		assert.False(t, removed)
		repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})

	t.Run("Sentinel cutoffs are rejected", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductDeleterService(repo, nil, zerolog.Nop())

		for _, cutoff := range []time.Time{{}, model.MaxDate} {
			removed, err := svc.DeleteProductsBeforeThan(ctx, cutoff)
			assert.ErrorIs(t, err, model.ErrArgument)
			assert.False(t, removed)
		}
		repo.AssertNotCalled(t, "GetAll", mock.Anything)
	})

	t.Run("Archives before deleting", func(t *testing.T) {
		repo := new(MockProductRepository)
		archiver := new(MockArchiver)
		svc := NewProductDeleterService(repo, archiver, zerolog.Nop())

		repo.On("GetAll", ctx).Return(all, nil)
		archiver.On("Archive", ctx, []model.Product{twoDaysAgo}).Return("/tmp/archive/products.jsonl.gz", nil)
		repo.On("DeleteMany", ctx, []uuid.UUID{twoDaysAgo.ID}).Return(true, nil)

		removed, err := svc.DeleteProductsBeforeThan(ctx, yesterday.Date)
		require.NoError(t, err)
		assert.True(t, removed)
		archiver.AssertExpectations(t)
	})

	t.Run("Archive failure deletes nothing", func(t *testing.T) {
		repo := new(MockProductRepository)
		archiver := new(MockArchiver)
		svc := NewProductDeleterService(repo, archiver, zerolog.Nop())

		repo.On("GetAll", ctx).Return(all, nil)
		archiver.On("Archive", ctx, mock.Anything).Return("", errors.New("disk full"))

		removed, err := svc.DeleteProductsBeforeThan(ctx, clk.Now())
		require.Error(t, err)
		assert.False(t, removed)
		repo.AssertNotCalled(t, "DeleteMany", mock.Anything, mock.Anything)
	})
}
