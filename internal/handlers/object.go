package handlers

import (
	"net/http"
	"strconv"

	"swipe-match-backend/internal/storage"

	"github.com/go-chi/chi/v5"
)

// ObjectReader reads stored photo objects
type ObjectReader interface {
	Get(key string) (storage.Object, bool)
}

// ObjectHandler serves photo objects kept in process memory
type ObjectHandler struct {
	objects ObjectReader
}

// NewObjectHandler creates a new object handler
func NewObjectHandler(objects ObjectReader) *ObjectHandler {
	return &ObjectHandler{objects: objects}
}

// GetObject handles GET /photos/*
func (h *ObjectHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	obj, ok := h.objects.Get(key)
	if key == "" || !ok {
		respondError(w, "Photo not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Body)
}
