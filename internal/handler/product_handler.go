package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"product-catalog/internal/model"
	"product-catalog/internal/service"

	"github.com/rs/zerolog"
)

const maxCreateBody = 1 << 20

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, model.MsgListFailed, err.Error(), h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.NewListProductsResponse(products))
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCreateBody))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, model.MsgInvalidJSON, err.Error(), h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			writeError(w, r, http.StatusBadRequest, domainErr.Message, domainErr.Detail(), h.logger)
			return
		}
		writeError(w, r, http.StatusInternalServerError, model.MsgCreateFailed, err.Error(), h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateProductResponse{
		Success: true,
		Message: model.MsgCreated,
		Data:    product,
	})
}
