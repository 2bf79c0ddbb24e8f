package handler

import (
	"net/http"
	"strings"

	"product-manager/internal/model"
	"product-manager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	getter  service.ProductGetterService
	adder   service.ProductAdderService
	updater service.ProductUpdaterService
	deleter service.ProductDeleterService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(
	getter service.ProductGetterService,
	adder service.ProductAdderService,
	updater service.ProductUpdaterService,
	deleter service.ProductDeleterService,
	logger zerolog.Logger,
) *ProductHandler {
	return &ProductHandler{
		getter:  getter,
		adder:   adder,
		updater: updater,
		deleter: deleter,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products. The name and manufacturer query parameters
// narrow the result; a blank filter value is answered with 404.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		products []model.ProductResponse
		err      error
	)

	switch {
	case query.Has("name"):
		products, err = h.getter.GetByName(r.Context(), query.Get("name"))
	case query.Has("manufacturer"):
		products, err = h.getter.GetByManufacturer(r.Context(), query.Get("manufacturer"))
	default:
		products, err = h.getter.GetAll(r.Context())
	}

	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if products == nil {
		writeError(w, r, model.NewNotFoundError("a non-blank filter value is required"), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.getter.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if product == nil {
		writeError(w, r, model.NewNotFoundError("product %s not found", id), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products. Manufacturers can only add their own products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ProductAddRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := ensureOwnEmail(req.ManufactureEmail, caller); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.adder.AddProduct(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// CreateBatch handles POST /api/products/batch.
func (h *ProductHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var reqs []model.ProductAddRequest
	if err := decodeJSON(r, &reqs); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	for _, req := range reqs {
		if err := ensureOwnEmail(req.ManufactureEmail, caller); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	products, err := h.adder.AddProducts(r.Context(), reqs)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, products)
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := productID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ProductUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := ensureOwnEmail(req.ManufactureEmail, caller); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.ensureOwner(r, id, caller); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	product, err := h.updater.UpdateProduct(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if product == nil {
		writeError(w, r, model.NewNotFoundError("product %s not found", id), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	id, err := productID(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.ensureOwner(r, id, caller); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	removed, err := h.deleter.DeleteProduct(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, removed)
}

// DeleteMany handles DELETE /api/products with a list of products in the body.
// Every product must belong to the caller.
func (h *ProductHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var products []model.ProductResponse
	if err := decodeJSON(r, &products); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	for _, p := range products {
		if p.ID == uuid.Nil {
			continue
		}
		owned, err := h.getter.IsOwnedBy(r.Context(), caller, p.ManufacturePhone, p.ID)
		if err != nil {
			writeError(w, r, err, h.logger)
			return
		}
		if !owned {
			writeError(w, r, model.NewForbiddenError("product %s does not belong to you", p.ID), h.logger)
			return
		}
	}

	removed, err := h.deleter.DeleteProducts(r.Context(), products)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, removed)
}

// ensureOwner loads the product and checks that caller manufactures it.
func (h *ProductHandler) ensureOwner(r *http.Request, id uuid.UUID, caller string) error {
	existing, err := h.getter.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	if existing == nil {
		return model.NewNotFoundError("product %s not found", id)
	}
	if !sameEmail(existing.ManufactureEmail, caller) {
		return model.NewForbiddenError("you can only change your own products")
	}
	return nil
}

// ensureOwnEmail rejects payloads that name another manufacturer. A blank
// email is left for request validation to report.
func ensureOwnEmail(email, caller string) error {
	if strings.TrimSpace(email) == "" || sameEmail(email, caller) {
		return nil
	}
	return model.NewForbiddenError("you can only manage products under your own email")
}

func productID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, model.NewArgumentError("invalid product id %q", raw)
	}
	return id, nil
}
