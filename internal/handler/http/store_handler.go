package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/billing"
	"github.com/swiftcart/storefront-platform/internal/store"
)

type CreateStoreRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	Tagline    string `json:"tagline"`
	BrandColor string `json:"brandColor"`
	StoreSlug  string `json:"storeSlug"`
	Phone      string `json:"phone"`
	PlanName   string `json:"planName"`
}

type UpdateProfileRequest struct {
	Name         string `json:"name" validate:"required,min=2"`
	Tagline      string `json:"tagline"`
	BrandColor   string `json:"brandColor"`
	Phone        string `json:"phone"`
	HeroImage    string `json:"heroImage"`
	AboutContent string `json:"aboutContent"`
	CustomDomain string `json:"customDomain"`
}

// StorefrontResponse is the public shape of a store: profile and
// catalog, never orders.
type StorefrontResponse struct {
	Profile  store.StoreProfile `json:"profile"`
	Products []store.Product    `json:"products"`
}

type StoreHandler struct {
	registry *store.Registry
	gate     *billing.Gate
	validate *validator.Validate
}

func NewStoreHandler(registry *store.Registry, gate *billing.Gate) *StoreHandler {
	return &StoreHandler{
		registry: registry,
		gate:     gate,
		validate: validator.New(),
	}
}

// RegisterPublicRoutes wires the storefront-facing routes. Browsing is
// refused for stores with an expired subscription.
func (h *StoreHandler) RegisterPublicRoutes(router chi.Router) {
	router.Get("/stores", h.handleListStores)
	router.Get("/stores/{storeID}", h.handleGetStore)
	router.Get("/storefronts/{slug}", h.handleGetStorefront)
}

// RegisterOwnerRoutes wires the merchant admin routes. They must be
// mounted behind RequireAuth.
func (h *StoreHandler) RegisterOwnerRoutes(router chi.Router) {
	router.Post("/stores", h.handleCreateStore)
	router.Get("/stores/{storeID}/admin", h.handleGetStoreAdmin)
	router.Put("/stores/{storeID}/profile", h.handleUpdateProfile)
	router.Post("/stores/{storeID}/billing/renew", h.handleRenew)
	router.Post("/stores/{storeID}/billing/expire", h.handleExpire)
	router.Post("/stores/{storeID}/domain/verify", h.handleVerifyDomain)
}

func (h *StoreHandler) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var requestPayload CreateStoreRequest

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

	profile := store.StoreProfile{
		Name:       requestPayload.Name,
		Tagline:    requestPayload.Tagline,
		BrandColor: requestPayload.BrandColor,
		StoreSlug:  requestPayload.StoreSlug,
		Phone:      requestPayload.Phone,
		PlanName:   requestPayload.PlanName,
		OwnerEmail: ident.Email,
		UserID:     ident.ID,
	}

	created, err := h.registry.Create(r.Context(), profile, nil, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create store")

		var clientMessage string
		switch {
		case errors.Is(err, store.ErrDuplicateSlug):
			clientMessage = "Store slug is already taken"
		case errors.Is(err, store.ErrOwnerHasStore):
			clientMessage = "Account already owns a store"
		case errors.Is(err, store.ErrInvalidSlug):
			clientMessage = "Invalid store slug"
		default:
			clientMessage = "Failed to create store"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *StoreHandler) handleListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.registry.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list stores")
		respondWithError(w, http.StatusInternalServerError, "Failed to list stores")
		return
	}

	// The marketplace only shows stores that can actually be browsed.
	visible := make([]StorefrontResponse, 0, len(stores))
	for _, s := range stores {
		if !billing.Browsable(s.Profile) {
			continue
		}
		visible = append(visible, StorefrontResponse{Profile: s.Profile, Products: s.Products})
	}

	respondWithJSON(w, http.StatusOK, visible)
}

func (h *StoreHandler) handleGetStore(w http.ResponseWriter, r *http.Request) {
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

	respondWithJSON(w, http.StatusOK, StorefrontResponse{Profile: s.Profile, Products: s.Products})
}

func (h *StoreHandler) handleGetStorefront(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	s, err := h.registry.GetBySlug(r.Context(), slug)
	if err != nil {
		respondStoreLookupError(w, err, "Failed to get storefront")
		return
	}

	if err := billing.EnsureBrowsable(s.Profile); err != nil {
		respondWithError(w, mapErrorToStatusCode(err), "Store is currently unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, StorefrontResponse{Profile: s.Profile, Products: s.Products})
}

func (h *StoreHandler) handleGetStoreAdmin(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, s)
}

func (h *StoreHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateProfileRequest

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

	updated := s.Profile
	updated.Name = requestPayload.Name
	updated.Tagline = requestPayload.Tagline
	updated.BrandColor = requestPayload.BrandColor
	updated.Phone = requestPayload.Phone
	updated.HeroImage = requestPayload.HeroImage
	updated.AboutContent = requestPayload.AboutContent
	updated.CustomDomain = requestPayload.CustomDomain

	// A new custom domain starts over as pending; dropping the domain
	// drops its status.
	switch {
	case requestPayload.CustomDomain == "":
		updated.DomainStatus = ""
	case requestPayload.CustomDomain != s.Profile.CustomDomain:
		updated.DomainStatus = store.DomainPending
	}

	if err := h.registry.UpdateProfile(r.Context(), s.Profile.ID, updated); err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Msg("Failed to update store profile")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to update store profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) handleRenew(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	if err := h.gate.Renew(r.Context(), s.Profile.ID); err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Msg("Failed to renew subscription")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to renew subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) handleVerifyDomain(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	if s.Profile.CustomDomain == "" {
		respondWithError(w, http.StatusBadRequest, "No custom domain configured")
		return
	}

	updated := s.Profile
	updated.DomainStatus = store.DomainActive

	if err := h.registry.UpdateProfile(r.Context(), s.Profile.ID, updated); err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Msg("Failed to verify custom domain")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to verify custom domain")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) handleExpire(w http.ResponseWriter, r *http.Request) {
	s, ok := h.requireOwnedStore(w, r)
	if !ok {
		return
	}

	if err := h.gate.Expire(r.Context(), s.Profile.ID); err != nil {
		log.Error().Err(err).Str("store_id", s.Profile.ID).Msg("Failed to expire subscription")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to expire subscription")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) requireOwnedStore(w http.ResponseWriter, r *http.Request) (*store.MerchantStore, bool) {
	return requireOwnedStore(w, r, h.registry)
}

func respondStoreLookupError(w http.ResponseWriter, err error, fallback string) {
	clientMessage := fallback
	if errors.Is(err, store.ErrNotFound) {
		clientMessage = "Store not found"
	} else {
		log.Error().Err(err).Msg(fallback)
	}
	respondWithError(w, mapErrorToStatusCode(err), clientMessage)
}
