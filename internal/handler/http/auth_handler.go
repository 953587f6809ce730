package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/identity"
)

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"omitempty,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token    string            `json:"token"`
	Identity identity.Identity `json:"identity"`
}

type AuthHandler struct {
	provider identity.Provider
	validate *validator.Validate
}

func NewAuthHandler(provider identity.Provider) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.Post("/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest

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

	ident, err := h.provider.Register(r.Context(), requestPayload.Email, requestPayload.Password, requestPayload.DisplayName)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register identity")

		clientMessage := "Failed to register"
		if errors.Is(err, identity.ErrEmailExists) {
			clientMessage = "Email already registered"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, ident)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

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

	ident, token, err := h.provider.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", requestPayload.Email).Msg("Failed login attempt")
		respondWithError(w, mapErrorToStatusCode(err), "Invalid email or password")
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{Token: token, Identity: *ident})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondWithError(w, http.StatusUnauthorized, "Missing bearer token")
		return
	}

	if err := h.provider.Logout(r.Context(), token); err != nil {
		log.Error().Err(err).Msg("Failed to log out")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
