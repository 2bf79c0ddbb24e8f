package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"product-manager/internal/auth"
	"product-manager/internal/middleware"
	"product-manager/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type MockGetterService struct {
	mock.Mock
}

func (m *MockGetterService) GetAll(ctx context.Context) ([]model.ProductResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductResponse), args.Error(1)
}

func (m *MockGetterService) GetByID(ctx context.Context, id uuid.UUID) (*model.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductResponse), args.Error(1)
}

func (m *MockGetterService) GetByName(ctx context.Context, name string) ([]model.ProductResponse, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductResponse), args.Error(1)
}

func (m *MockGetterService) GetByManufacturer(ctx context.Context, email string) ([]model.ProductResponse, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductResponse), args.Error(1)
}

func (m *MockGetterService) IsOwnedBy(ctx context.Context, email, phone string, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, phone, id)
	return args.Bool(0), args.Error(1)
}

type MockAdderService struct {
	mock.Mock
}

func (m *MockAdderService) AddProduct(ctx context.Context, req *model.ProductAddRequest) (*model.ProductResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductResponse), args.Error(1)
}

func (m *MockAdderService) AddProducts(ctx context.Context, reqs []model.ProductAddRequest) ([]model.ProductResponse, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductResponse), args.Error(1)
}

type MockUpdaterService struct {
	mock.Mock
}

func (m *MockUpdaterService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.ProductResponse, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductResponse), args.Error(1)
}

type MockDeleterService struct {
	mock.Mock
}

func (m *MockDeleterService) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeleterService) DeleteProducts(ctx context.Context, products []model.ProductResponse) (bool, error) {
	args := m.Called(ctx, products)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeleterService) DeleteProductsBeforeThan(ctx context.Context, cutoff time.Time) (bool, error) {
	args := m.Called(ctx, cutoff)
	return args.Bool(0), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthenticationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthenticationResponse), args.Error(1)
}

func (m *MockAccountService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthenticationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthenticationResponse), args.Error(1)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, callerEmail string, req *model.DeleteAccountRequest) error {
	args := m.Called(ctx, callerEmail, req)
	return args.Error(0)
}

func (m *MockAccountService) IsEmailInUse(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type productMocks struct {
	getter  *MockGetterService
	adder   *MockAdderService
	updater *MockUpdaterService
	deleter *MockDeleterService
}

// newProductRouter mounts a ProductHandler on the same paths the API uses.
func newProductRouter() (http.Handler, *productMocks) {
	m := &productMocks{
		getter:  new(MockGetterService),
		adder:   new(MockAdderService),
		updater: new(MockUpdaterService),
		deleter: new(MockDeleterService),
	}
	h := NewProductHandler(m.getter, m.adder, m.updater, m.deleter, zerolog.Nop())

	r := chi.NewRouter()
	r.Get("/api/products", h.List)
	r.Get("/api/products/{id}", h.GetByID)
	r.Post("/api/products", h.Create)
	r.Post("/api/products/batch", h.CreateBatch)
	r.Put("/api/products/{id}", h.Update)
	r.Delete("/api/products/{id}", h.Delete)
	r.Delete("/api/products", h.DeleteMany)
	return r, m
}

// newRequest builds a request, authenticated as email when it is not empty.
func newRequest(method, target, body, email string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		req = req.WithContext(middleware.WithClaims(req.Context(), &auth.Claims{Email: email}))
	}
	return req
}
