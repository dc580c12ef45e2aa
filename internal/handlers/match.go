package handlers

import (
	"encoding/json"
	"net/http"

	"swipe-match-backend/internal/middleware"
	"swipe-match-backend/internal/models"
	"swipe-match-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// MatchHandler handles decisions, matches and received likes
type MatchHandler struct {
	matchService *services.MatchService
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// DecisionRequest carries either an explicit kind or the horizontal drag of a swipe
type DecisionRequest struct {
	TargetID string   `json:"target_id"`
	Kind     string   `json:"kind,omitempty"`
	DragDX   *float64 `json:"drag_dx,omitempty"`
}

// RecordDecision handles POST /api/v1/decisions
func (h *MatchHandler) RecordDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TargetID == "" {
		respondError(w, "target_id is required", http.StatusBadRequest)
		return
	}

	var kind models.DecisionKind
	switch {
	case req.Kind != "":
		kind = models.DecisionKind(req.Kind)
	case req.DragDX != nil:
		k, ok := models.KindFromDrag(*req.DragDX)
		if !ok {
			respondError(w, "Swipe did not pass the threshold", http.StatusBadRequest)
			return
		}
		kind = k
	default:
		respondError(w, "kind or drag_dx is required", http.StatusBadRequest)
		return
	}

	result, err := h.matchService.RecordDecision(ctx, middleware.GetUserID(ctx), req.TargetID, kind)
	if err != nil {
		respondServiceError(w, r, err, "Failed to record decision")
		return
	}

	respondJSON(w, result, http.StatusOK)
}

// GetMatches handles GET /api/v1/matches
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	matches, err := h.matchService.ListMatches(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get matches")
		return
	}

	respondJSON(w, map[string]interface{}{
		"matches": matches,
	}, http.StatusOK)
}

// EndMatch handles DELETE /api/v1/matches/{match_id}
func (h *MatchHandler) EndMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.matchService.EndMatch(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "match_id")); err != nil {
		respondServiceError(w, r, err, "Failed to end match")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLikesReceived handles GET /api/v1/likes/received
func (h *MatchHandler) GetLikesReceived(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	likes, err := h.matchService.LikesReceived(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondServiceError(w, r, err, "Failed to get received likes")
		return
	}

	respondJSON(w, map[string]interface{}{
		"likes": likes,
	}, http.StatusOK)
}
