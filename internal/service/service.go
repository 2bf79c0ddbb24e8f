package service

import (
	"context"
	"time"

	"product-manager/internal/model"

	"github.com/google/uuid"
)

// ProductGetterService answers product queries.
type ProductGetterService interface {
	GetAll(ctx context.Context) ([]model.ProductResponse, error)

	// GetByID returns nil when the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProductResponse, error)

	// GetByName returns nil for a blank name.
	GetByName(ctx context.Context, name string) ([]model.ProductResponse, error)

	// GetByManufacturer returns nil for a blank email and a validation error
	// for an email that is not accepted.
	GetByManufacturer(ctx context.Context, email string) ([]model.ProductResponse, error)

	IsOwnedBy(ctx context.Context, email, phone string, id uuid.UUID) (bool, error)
}

// ProductAdderService creates products.
type ProductAdderService interface {
	AddProduct(ctx context.Context, req *model.ProductAddRequest) (*model.ProductResponse, error)

	// AddProducts validates every request before storing any of them.
	AddProducts(ctx context.Context, reqs []model.ProductAddRequest) ([]model.ProductResponse, error)
}

// ProductUpdaterService modifies products.
type ProductUpdaterService interface {
	// UpdateProduct returns nil when no product has the given id.
	UpdateProduct(ctx context.Context, id uuid.UUID, req *model.ProductUpdateRequest) (*model.ProductResponse, error)
}

// ProductDeleterService removes products.
type ProductDeleterService interface {
	DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteProducts(ctx context.Context, products []model.ProductResponse) (bool, error)

	// DeleteProductsBeforeThan removes every product dated strictly before
	// cutoff and reports whether anything was removed.
	DeleteProductsBeforeThan(ctx context.Context, cutoff time.Time) (bool, error)
}

// AccountService manages manufacturer accounts.
type AccountService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthenticationResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthenticationResponse, error)

	// DeleteAccount removes the caller's own account after checking the password.
	DeleteAccount(ctx context.Context, callerEmail string, req *model.DeleteAccountRequest) error

	IsEmailInUse(ctx context.Context, email string) (bool, error)
}

// PasswordHasher hashes new passwords and checks stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(encoded, password string) (bool, error)
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user model.User) (string, time.Time, error)
}
