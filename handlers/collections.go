package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cinematch/internal/auth"
	"cinematch/models"
	"cinematch/services/collections"
)

// CollectionsHandler exposes themed collection CRUD and membership endpoints.
type CollectionsHandler struct {
	collections *collections.Service
}

// NewCollectionsHandler creates a new collections handler.
func NewCollectionsHandler(collectionsSvc *collections.Service) *CollectionsHandler {
	return &CollectionsHandler{collections: collectionsSvc}
}

// writeCollectionsError maps service errors to HTTP responses.
func writeCollectionsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, collections.ErrNotFound):
		writeError(w, http.StatusNotFound, "collection not found")
	case errors.Is(err, collections.ErrForbidden):
		writeError(w, http.StatusForbidden, "not the collection owner")
	case errors.Is(err, collections.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "title is required")
	case errors.Is(err, collections.ErrMovieNameRequired):
		writeError(w, http.StatusBadRequest, "movie name is required")
	default:
		writeError(w, http.StatusInternalServerError, "collection operation failed")
	}
}

// Create makes a new themed collection owned by the caller.
func (h *CollectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CollectionUpsert
	if !decodeBody(w, r, &input) {
		return
	}

	collection, err := h.collections.Create(r.Context(), auth.GetAccountID(r), input)
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

// ListMine returns all collections owned by the caller.
func (h *CollectionsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.collections.ListMine(r.Context(), auth.GetAccountID(r))
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": list})
}

// ListPublic returns public collections, optionally filtered by ?q= over
// title, description, and creator name. No authentication required.
func (h *CollectionsHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.collections.ListPublic(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": list})
}

// Get returns a single collection the caller can read.
func (h *CollectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection, err := h.collections.Get(r.Context(), auth.GetAccountID(r), mux.Vars(r)["id"])
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

// Update edits a collection's metadata. Owner only.
func (h *CollectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.CollectionUpsert
	if !decodeBody(w, r, &input) {
		return
	}

	if err := h.collections.Update(r.Context(), auth.GetAccountID(r), mux.Vars(r)["id"], input); err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Delete removes a collection and its movies. Owner only.
func (h *CollectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.Delete(r.Context(), auth.GetAccountID(r), mux.Vars(r)["id"]); err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CanEdit reports whether the caller may modify the collection. Unknown ids
// read as not editable rather than an error.
func (h *CollectionsHandler) CanEdit(w http.ResponseWriter, r *http.Request) {
	ok, err := h.collections.CanEdit(r.Context(), auth.GetAccountID(r), mux.Vars(r)["id"])
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"canEdit": ok})
}

// Movies lists a collection's movies in display order.
func (h *CollectionsHandler) Movies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.collections.Movies(r.Context(), auth.GetAccountID(r), mux.Vars(r)["id"])
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

// AddMovieRequest is the payload for adding a movie to a collection.
type AddMovieRequest struct {
	models.Movie
	Poster string `json:"poster,omitempty"`
}

// AddMovie appends a movie to the end of a collection. Owner only.
func (h *CollectionsHandler) AddMovie(w http.ResponseWriter, r *http.Request) {
	var req AddMovieRequest
	if !decodeBody(w, r, &req) {
		return
	}

	movie, err := h.collections.AddMovie(r.Context(), auth.GetAccountID(r), mux.Vars(r)["id"], req.Movie, req.Poster)
	if err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}

// RemoveMovie deletes one movie row from a collection. Owner only. Remaining
// rows keep their order index.
func (h *CollectionsHandler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	if err := h.collections.RemoveMovie(r.Context(), auth.GetAccountID(r), mux.Vars(r)["movieID"]); err != nil {
		writeCollectionsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
