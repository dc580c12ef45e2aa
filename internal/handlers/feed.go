package handlers

import (
	"net/http"
	"strconv"

	"swipe-match-backend/internal/middleware"
	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/services"
)

const (
	defaultDeckSize = 20
	maxDeckSize     = 100
)

// FeedHandler serves candidates to swipe on
type FeedHandler struct {
	feedService *services.FeedService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(feedService *services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// Next handles GET /api/v1/feed/next. An exhausted feed answers 204.
func (h *FeedHandler) Next(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	candidate, err := h.feedService.NextCandidate(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to load next candidate")
		return
	}
	if candidate == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, candidate, http.StatusOK)
}

// Deck handles GET /api/v1/feed?limit=
func (h *FeedHandler) Deck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultDeckSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxDeckSize)
	}

	candidates, err := h.feedService.Candidates(ctx, middleware.GetUserID(ctx), limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load feed")
		return
	}
	if candidates == nil {
		candidates = []*models.Candidate{}
	}

	respondJSON(w, map[string]interface{}{
		"candidates": candidates,
	}, http.StatusOK)
}
