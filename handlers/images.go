package handlers

import (
	"net/http"

	"cinematch/services/images"
)

// ImagesHandler exposes the poster cache.
type ImagesHandler struct {
	cache *images.Cache
}

// NewImagesHandler creates a new images handler.
func NewImagesHandler(cache *images.Cache) *ImagesHandler {
	return &ImagesHandler{cache: cache}
}

// ResolveRequest asks for a poster URL for one title.
type ResolveRequest struct {
	Title string `json:"title"`
}

// Resolve returns a poster URL for a title. Always succeeds: on upstream
// failure a deterministic fallback image is returned.
func (h *ImagesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	url := h.cache.Resolve(r.Context(), req.Title)
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

// PreloadRequest lists titles to warm the cache with.
type PreloadRequest struct {
	Titles []string `json:"titles"`
}

// Preload fetches posters for a batch of titles concurrently.
func (h *ImagesHandler) Preload(w http.ResponseWriter, r *http.Request) {
	var req PreloadRequest
	if !decodeBody(w, r, &req) {
		return
	}

	h.cache.Preload(r.Context(), req.Titles)
	writeJSON(w, http.StatusOK, map[string]any{"preloaded": len(req.Titles)})
}

// Stats reports cache tier sizes and the current expiry timestamp.
func (h *ImagesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.CacheStats())
}

// Invalidate drops both cache tiers. Master only.
func (h *ImagesHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	h.cache.InvalidateAll()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
}
