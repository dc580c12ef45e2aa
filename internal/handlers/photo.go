package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"swipe-match-backend/internal/middleware"
	"swipe-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// multipart overhead on top of the file itself
const uploadSlack = 1 << 20

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// GetPhotos handles GET /api/v1/photos
func (h *PhotoHandler) GetPhotos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	photos, err := h.photoService.List(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get photos")
		return
	}

	respondJSON(w, map[string]interface{}{
		"photos": photos,
		"total":  len(photos),
	}, http.StatusOK)
}

// UploadPhoto handles POST /api/v1/photos as multipart form data with a
// "file" part and an optional "caption" field.
func (h *PhotoHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.photoService.MaxBytes()+uploadSlack)
	if err := r.ParseMultipartForm(h.photoService.MaxBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "Photo is too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to read upload")
		respondError(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			contentType = byExt
		} else {
			contentType = http.DetectContentType(body)
		}
	}

	photo, err := h.photoService.Upload(ctx, userID, services.UploadRequest{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        body,
		Caption:     r.FormValue("caption"),
	})
	if err != nil {
		respondServiceError(w, r, err, "Failed to upload photo")
		return
	}

	respondJSON(w, photo, http.StatusCreated)
}

// DeletePhoto handles DELETE /api/v1/photos/{photo_id}
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.photoService.Delete(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "photo_id")); err != nil {
		respondServiceError(w, r, err, "Failed to delete photo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
