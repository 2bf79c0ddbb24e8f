package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxDate is the far-future sentinel rejected by cutoff deletion, together with the zero time.
var MaxDate = time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC)

// Product is a manufacturer's product. Availability is derived from Count.
type Product struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Date             time.Time `json:"date" db:"date"`
	ManufacturePhone string    `json:"manufacturePhone" db:"manufacture_phone"`
	ManufactureEmail string    `json:"manufactureEmail" db:"manufacture_email"`
	Count            int       `json:"count" db:"count"`
}

// IsAvailable reports whether the product is in stock.
func (p Product) IsAvailable() bool {
	return p.Count > 0
}

// ProductAddRequest is the payload for creating a product.
type ProductAddRequest struct {
	Name             string `json:"name" validate:"required,max=50"`
	ManufacturePhone string `json:"manufacturePhone" validate:"required,digits,max=11"`
	ManufactureEmail string `json:"manufactureEmail" validate:"required,max=100,email"`
	Count            int    `json:"count" validate:"min=1,max=100"`
}

// ToProduct maps the request onto a new entity. ID and Date are left for the caller.
func (r ProductAddRequest) ToProduct() Product {
	return Product{
		Name:             r.Name,
		ManufacturePhone: r.ManufacturePhone,
		ManufactureEmail: r.ManufactureEmail,
		Count:            r.Count,
	}
}

// ProductUpdateRequest is the payload for updating a product. ID must match the path id.
type ProductUpdateRequest struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name" validate:"required,max=50"`
	ManufacturePhone string    `json:"manufacturePhone" validate:"required,digits,max=11"`
	ManufactureEmail string    `json:"manufactureEmail" validate:"required,max=100,email"`
	Count            int       `json:"count" validate:"min=1,max=100"`
}

// ToProduct maps the request onto an entity carrying the mutable fields only.
func (r ProductUpdateRequest) ToProduct() Product {
	return Product{
		ID:               r.ID,
		Name:             r.Name,
		ManufacturePhone: r.ManufacturePhone,
		ManufactureEmail: r.ManufactureEmail,
		Count:            r.Count,
	}
}

// ProductResponse is the public representation of a product.
type ProductResponse struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	ManufacturePhone string    `json:"manufacturePhone"`
	ManufactureEmail string    `json:"manufactureEmail"`
	Count            int       `json:"count"`
	IsAvailable      bool      `json:"isAvailable"`
}

// NewProductResponse projects an entity onto its response and recomputes availability.
func NewProductResponse(p Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Date:             p.Date,
		ManufacturePhone: p.ManufacturePhone,
		ManufactureEmail: p.ManufactureEmail,
		Count:            p.Count,
		IsAvailable:      p.IsAvailable(),
	}
}

// NewProductResponses maps a list of entities. A nil input stays nil.
func NewProductResponses(products []Product) []ProductResponse {
	if products == nil {
		return nil
	}
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, NewProductResponse(p))
	}
	return responses
}

// ToProduct maps a response back onto an entity. IsAvailable is dropped.
func (r ProductResponse) ToProduct() Product {
	return Product{
		ID:               r.ID,
		Name:             r.Name,
		Date:             r.Date,
		ManufacturePhone: r.ManufacturePhone,
		ManufactureEmail: r.ManufactureEmail,
		Count:            r.Count,
	}
}
