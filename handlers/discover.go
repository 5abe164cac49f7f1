package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"cinematch/services/images"
	"cinematch/services/omdb"
	"cinematch/services/recommend"
)

// DiscoverHandler serves movie discovery: LLM-backed recommendations, title
// lookup, and title-seeded similar-movie lists.
type DiscoverHandler struct {
	recommend *recommend.Service
	omdb      *omdb.Client
	images    *images.Cache
}

// NewDiscoverHandler creates a new discover handler.
func NewDiscoverHandler(recommendSvc *recommend.Service, omdbClient *omdb.Client, imageCache *images.Cache) *DiscoverHandler {
	return &DiscoverHandler{
		recommend: recommendSvc,
		omdb:      omdbClient,
		images:    imageCache,
	}
}

// DiscoverRequest is the recommendation query payload.
type DiscoverRequest struct {
	Query string `json:"query"`
}

// TitleRequest is the lookup payload for the movie data endpoints.
type TitleRequest struct {
	Title string `json:"title"`
}

// Recommendations returns exactly five movies for a free-text query. The
// X-Recommendation-Source header tells the caller whether the list came from
// the completion service or the fallback set.
func (h *DiscoverHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	movies, source, err := h.recommend.GetRecommendations(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, recommend.ErrNoAPIKey) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	// Warm the poster cache in the background so the UI's follow-up image
	// requests hit memory.
	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Name)
	}
	go h.images.Preload(context.Background(), titles)

	w.Header().Set("X-Recommendation-Source", string(source))
	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

// chatApology is served whenever the Q&A upstream fails or answers empty.
const chatApology = "Sorry, I couldn't process your request."

// Chat forwards a free-text movie question to the proxy's Q&A endpoint.
// Upstream failure or an empty answer degrades to a canned reply, never an
// error.
func (h *DiscoverHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	answer, err := h.omdb.Query(r.Context(), req.Query)
	if err != nil {
		log.Printf("[discover] chat query failed: %v", err)
		answer = ""
	}
	if answer == "" {
		answer = chatApology
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// MovieLookup resolves a single title against the movie database proxy. An
// unknown title yields an empty list, not an error.
func (h *DiscoverHandler) MovieLookup(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	movies, err := h.omdb.Lookup(r.Context(), req.Title)
	if err != nil {
		log.Printf("[discover] movie lookup for %q failed: %v", req.Title, err)
		writeError(w, http.StatusBadGateway, "movie database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}

// SimilarMovies returns database-driven recommendations seeded by a title.
func (h *DiscoverHandler) SimilarMovies(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	movies, err := h.omdb.Recommendations(r.Context(), req.Title)
	if err != nil {
		log.Printf("[discover] similar movies for %q failed: %v", req.Title, err)
		writeError(w, http.StatusBadGateway, "movie database unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"movies": movies})
}
