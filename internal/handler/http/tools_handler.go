package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/swiftcart/storefront-platform/internal/ai"
	"github.com/swiftcart/storefront-platform/internal/media"
)

const maxUploadBytes = 10 << 20

type DescribeProductRequest struct {
	ProductName string `json:"productName" validate:"required,min=2"`
}

type DescribeProductResponse struct {
	Description string `json:"description"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

// ToolsHandler serves the merchant helper endpoints: AI product
// descriptions and image uploads. Mount behind RequireAuth.
type ToolsHandler struct {
	describer ai.Describer
	uploader  media.Uploader
	validate  *validator.Validate
}

func NewToolsHandler(describer ai.Describer, uploader media.Uploader) *ToolsHandler {
	return &ToolsHandler{
		describer: describer,
		uploader:  uploader,
		validate:  validator.New(),
	}
}

func (h *ToolsHandler) RegisterOwnerRoutes(router chi.Router) {
	router.Post("/tools/describe", h.handleDescribe)
	router.Post("/tools/upload", h.handleUpload)
}

func (h *ToolsHandler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	var requestPayload DescribeProductRequest

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

	if h.describer == nil {
		respondWithJSON(w, http.StatusOK, DescribeProductResponse{Description: ai.FallbackDescription})
		return
	}

	description, err := h.describer.Describe(r.Context(), requestPayload.ProductName)
	if err != nil {
		// Description generation failing should not block the merchant.
		log.Warn().Err(err).Str("product_name", requestPayload.ProductName).Msg("Failed to generate description")
		description = ai.FallbackDescription
	}

	respondWithJSON(w, http.StatusOK, DescribeProductResponse{Description: description})
}

func (h *ToolsHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Media uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Error().Err(err).Msg("Failed to parse multipart form")
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	folder := r.FormValue("folder")

	url, err := h.uploader.Upload(r.Context(), header.Filename, file, folder)
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Failed to upload file")
		respondWithError(w, http.StatusBadGateway, "Failed to upload file")
		return
	}

	respondWithJSON(w, http.StatusOK, UploadResponse{URL: url})
}
