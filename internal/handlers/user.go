package handlers

import (
	"encoding/json"
	"net/http"

	"swipe-match-backend/internal/middleware"
	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService  *services.UserService
	photoService *services.PhotoService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, photoService *services.PhotoService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		photoService: photoService,
	}
}

// CreateUserResponse is returned on registration
type CreateUserResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ProfileResponse is a profile together with its photos
type ProfileResponse struct {
	User   *models.User    `json:"user"`
	Photos []*models.Photo `json:"photos"`
}

// PushTokenRequest sets or clears the device token
type PushTokenRequest struct {
	Token string `json:"token"`
}

// CreateUser handles POST /api/v1/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create user")
		return
	}

	respondJSON(w, CreateUserResponse{User: user, Token: token}, http.StatusCreated)
}

// GetMe handles GET /api/v1/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	h.respondProfile(w, r, userID, userID)
}

// GetUser handles GET /api/v1/users/{user_id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	h.respondProfile(w, r, middleware.GetUserID(r.Context()), chi.URLParam(r, "user_id"))
}

func (h *UserHandler) respondProfile(w http.ResponseWriter, r *http.Request, viewerID, userID string) {
	ctx := r.Context()

	user, err := h.userService.GetProfile(ctx, viewerID, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get profile")
		return
	}

	photos, err := h.photoService.List(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get photos")
		return
	}

	respondJSON(w, ProfileResponse{User: user, Photos: photos}, http.StatusOK)
}

// UpdateMe handles PUT /api/v1/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to update profile")
		return
	}

	respondJSON(w, user, http.StatusOK)
}

// UpdatePushToken handles PUT /api/v1/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(r.Context(), middleware.GetUserID(r.Context()), req.Token); err != nil {
		respondServiceError(w, r, err, "Failed to update push token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
