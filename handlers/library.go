package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cinematch/models"
	"cinematch/services/library"
)

// LibraryHandler exposes the three library stores (saved, watched, disliked)
// and the storage permission toggle.
type LibraryHandler struct {
	library *library.Service
}

// NewLibraryHandler creates a new library handler.
func NewLibraryHandler(librarySvc *library.Service) *LibraryHandler {
	return &LibraryHandler{library: librarySvc}
}

func (h *LibraryHandler) store(w http.ResponseWriter, r *http.Request) (*library.Store, bool) {
	kind := library.Kind(mux.Vars(r)["kind"])
	store, err := h.library.Store(kind)
	if err != nil {
		if errors.Is(err, library.ErrUnknownKind) {
			writeError(w, http.StatusNotFound, "unknown library kind")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "library unavailable")
		return nil, false
	}
	return store, true
}

// List returns the entries of one store, most recent first.
func (h *LibraryHandler) List(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": store.List(),
		"count":   store.Count(),
	})
}

// Add inserts a movie into a store. Duplicate keys are absorbed silently.
func (h *LibraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var movie models.Movie
	if !decodeBody(w, r, &movie) {
		return
	}
	if movie.Name == "" {
		writeError(w, http.StatusBadRequest, "movie name is required")
		return
	}

	added := store.Add(movie)
	writeJSON(w, http.StatusOK, map[string]any{
		"added": added,
		"id":    models.MovieKey(movie),
	})
}

// Remove deletes an entry by its derived key. Removing an absent key is not
// an error.
func (h *LibraryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	removed := store.Remove(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// Contains reports whether a movie is already present in a store.
func (h *LibraryHandler) Contains(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var movie models.Movie
	if !decodeBody(w, r, &movie) {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contains": store.Contains(movie)})
}

// Exclusions returns the deduplicated union of movie names across all three
// stores, as fed to the recommendation prompt.
func (h *LibraryHandler) Exclusions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"names": h.library.ExclusionList()})
}

// StoragePermissionResponse reports the current storage permission flag.
type StoragePermissionResponse struct {
	Enabled bool `json:"enabled"`
}

// GetStoragePermission returns the current storage permission state.
func (h *LibraryHandler) GetStoragePermission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StoragePermissionResponse{Enabled: h.library.StorageEnabled()})
}

// SetStoragePermission flips the storage permission. Disabling wipes the
// saved list immediately.
func (h *LibraryHandler) SetStoragePermission(w http.ResponseWriter, r *http.Request) {
	var req StoragePermissionResponse
	if !decodeBody(w, r, &req) {
		return
	}

	h.library.SetStoragePermission(req.Enabled)
	writeJSON(w, http.StatusOK, StoragePermissionResponse{Enabled: h.library.StorageEnabled()})
}
