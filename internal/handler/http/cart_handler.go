package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/billing"
	"github.com/swiftcart/storefront-platform/internal/cart"
	"github.com/swiftcart/storefront-platform/internal/store"
)

type AddCartItemRequest struct {
	ProductID string `json:"productId"`
}

type UpdateCartItemRequest struct {
	Delta int `json:"delta"`
}

type CartResponse struct {
	Items         []store.CartItem `json:"items"`
	TotalQuantity int              `json:"totalQuantity"`
	Subtotal      int64            `json:"subtotal"`
}

type CartHandler struct {
	registry *store.Registry
	carts    *cart.Engine
}

func NewCartHandler(registry *store.Registry, carts *cart.Engine) *CartHandler {
	return &CartHandler{registry: registry, carts: carts}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/stores/{storeID}/cart", h.handleGetCart)
	router.Post("/stores/{storeID}/cart/items", h.handleAddItem)
	router.Patch("/stores/{storeID}/cart/items/{productID}", h.handleUpdateQuantity)
	router.Delete("/stores/{storeID}/cart/items/{productID}", h.handleRemoveItem)
	router.Delete("/stores/{storeID}/cart", h.handleClearCart)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.cartKey(w, r)
	if !ok {
		return
	}

	items, err := h.carts.Items(r.Context(), key)
	if err != nil {
		log.Error().Err(err).Str("cart_key", key.String()).Msg("Failed to load cart")
		respondWithError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	key, s, ok := h.cartKey(w, r)
	if !ok {
		return
	}

	var requestPayload AddCartItemRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	product, found := findProduct(s.Products, requestPayload.ProductID)
	if !found {
		respondWithError(w, http.StatusNotFound, "Product not found")
		return
	}

	items, err := h.carts.AddItem(r.Context(), key, product)
	if err != nil {
		log.Error().Err(err).Str("cart_key", key.String()).Msg("Failed to add cart item")
		respondWithError(w, http.StatusInternalServerError, "Failed to add cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.cartKey(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")

	var requestPayload UpdateCartItemRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	items, err := h.carts.UpdateQuantity(r.Context(), key, productID, requestPayload.Delta)
	if err != nil {
		log.Error().Err(err).Str("cart_key", key.String()).Msg("Failed to update cart quantity")
		respondWithError(w, http.StatusInternalServerError, "Failed to update cart quantity")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.cartKey(w, r)
	if !ok {
		return
	}

	productID := chi.URLParam(r, "productID")

	items, err := h.carts.RemoveItem(r.Context(), key, productID)
	if err != nil {
		log.Error().Err(err).Str("cart_key", key.String()).Msg("Failed to remove cart item")
		respondWithError(w, http.StatusInternalServerError, "Failed to remove cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, cartResponse(items))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	key, _, ok := h.cartKey(w, r)
	if !ok {
		return
	}

	if err := h.carts.Clear(r.Context(), key); err != nil {
		log.Error().Err(err).Str("cart_key", key.String()).Msg("Failed to clear cart")
		respondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// cartKey resolves the store from the route, checks that it can be
// browsed, and builds the cart key from the session header.
func (h *CartHandler) cartKey(w http.ResponseWriter, r *http.Request) (cart.Key, *store.MerchantStore, bool) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing "+sessionHeader+" header")
		return cart.Key{}, nil, false
	}

	storeID := chi.URLParam(r, "storeID")

	s, err := h.registry.GetByID(r.Context(), storeID)
	if err != nil {
		respondStoreLookupError(w, err, "Failed to get store")
		return cart.Key{}, nil, false
	}

	if err := billing.EnsureBrowsable(s.Profile); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Store is currently unavailable")
		return cart.Key{}, nil, false
	}

	return cart.Key{StoreID: s.Profile.ID, SessionID: sessionID}, s, true
}

func cartResponse(items []store.CartItem) CartResponse {
	return CartResponse{
		Items:         items,
		TotalQuantity: cart.TotalQuantity(items),
		Subtotal:      cart.Subtotal(items),
	}
}

func findProduct(products []store.Product, id string) (store.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return store.Product{}, false
}
