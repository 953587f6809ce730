package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/billing"
	"github.com/swiftcart/storefront-platform/internal/order"
	"github.com/swiftcart/storefront-platform/internal/store"
)

type CheckoutRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type TrackOrderResponse struct {
	Order     store.Order `json:"order"`
	StoreName string      `json:"storeName"`
	StoreSlug string      `json:"storeSlug"`
}

type OrderHandler struct {
	registry *store.Registry
	orders   *order.Service
	validate *validator.Validate
}

func NewOrderHandler(registry *store.Registry, orders *order.Service) *OrderHandler {
	return &OrderHandler{
		registry: registry,
		orders:   orders,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterPublicRoutes(router chi.Router) {
	router.Post("/stores/{storeID}/checkout", h.handleCheckout)
	router.Get("/orders/{orderID}", h.handleTrackOrder)
}

// RegisterOwnerRoutes wires order management. Mount behind RequireAuth.
func (h *OrderHandler) RegisterOwnerRoutes(router chi.Router) {
	router.Get("/stores/{storeID}/orders", h.handleListOrders)
	router.Patch("/stores/{storeID}/orders/{orderID}/status", h.handleUpdateStatus)
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing "+sessionHeader+" header")
		return
	}

	storeID := chi.URLParam(r, "storeID")

	s, err := h.registry.GetByID(r.Context(), storeID)
	if err != nil {
		respondStoreLookupError(w, err, "Failed to get store")
		return
	}

	if err := billing.EnsureBrowsable(s.Profile); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Store is currently unavailable")
		return
	}

	var requestPayload CheckoutRequest

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

	customer := store.Customer{
		Name:    requestPayload.Name,
		Email:   requestPayload.Email,
		Phone:   requestPayload.Phone,
		Address: requestPayload.Address,
	}

	placed, err := h.orders.Place(r.Context(), s.Profile.ID, sessionID, customer)
	if err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Msg("Failed to place order")

		clientMessage := "Failed to place order"
		if errors.Is(err, order.ErrEmptyCart) {
			clientMessage = "Cart is empty"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, placed)
}

func (h *OrderHandler) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		respondWithError(w, http.StatusBadRequest, "Order id parameter cannot be empty")
		return
	}

	ord, profile, err := h.orders.Track(r.Context(), orderID)
	if err != nil {
		clientMessage := "Failed to track order"
		if errors.Is(err, store.ErrNotFound) {
			clientMessage = "Order not found"
		} else {
			log.Error().Err(err).Str("order_id", orderID).Msg("Failed to track order")
		}
		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, TrackOrderResponse{
		Order:     *ord,
		StoreName: profile.Name,
		StoreSlug: profile.StoreSlug,
	})
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s, ok := requireOwnedStore(w, r, h.registry)
	if !ok {
		return
	}

	orders := s.Orders
	if orders == nil {
		orders = []store.Order{}
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := requireOwnedStore(w, r, h.registry)
	if !ok {
		return
	}

	orderID := chi.URLParam(r, "orderID")

	var requestPayload UpdateOrderStatusRequest

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

	found, err := h.orders.UpdateStatus(r.Context(), s.Profile.ID, orderID, store.OrderStatus(requestPayload.Status))
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("Failed to update order status")

		clientMessage := "Failed to update order status"
		if errors.Is(err, order.ErrInvalidStatus) {
			clientMessage = "Invalid order status"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	if !found {
		respondWithError(w, http.StatusNotFound, "Order not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
