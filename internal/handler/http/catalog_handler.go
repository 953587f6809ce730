package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/catalog"
	"github.com/swiftcart/storefront-platform/internal/store"
)

type AddProductRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

type CatalogHandler struct {
	registry *store.Registry
	catalog  *catalog.Service
	validate *validator.Validate
}

func NewCatalogHandler(registry *store.Registry, svc *catalog.Service) *CatalogHandler {
	return &CatalogHandler{
		registry: registry,
		catalog:  svc,
		validate: validator.New(),
	}
}

// RegisterOwnerRoutes wires catalog mutation. Mount behind RequireAuth.
func (h *CatalogHandler) RegisterOwnerRoutes(router chi.Router) {
	router.Post("/stores/{storeID}/products", h.handleAddProduct)
	router.Delete("/stores/{storeID}/products/{productID}", h.handleDeleteProduct)
}

func (h *CatalogHandler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	var requestPayload AddProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		if !respondWithValidationErrors(w, err) {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return
	}

	product := store.Product{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
		Price:       requestPayload.Price,
		Image:       requestPayload.Image,
		Category:    requestPayload.Category,
	}

	created, err := h.catalog.AddProduct(r.Context(), s.Profile.ID, product)
	if err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Msg("Failed to add product")

		clientMessage := "Failed to add product"
		if errors.Is(err, catalog.ErrPlanLimitReached) {
			limit := h.catalog.Limit(s.Profile.PlanName)
			clientMessage = fmt.Sprintf("Plan limit of %d products reached", limit)
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *CatalogHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondWithError(w, http.StatusBadRequest, "Product id parameter cannot be empty")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), s.Profile.ID, productID); err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Str("product_id", productID).Msg("Failed to delete product")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) requireOwnedStore(w http.ResponseWriter, r *http.Request) (*store.MerchantStore, bool) {
	return requireOwnedStore(w, r, h.registry)
}
