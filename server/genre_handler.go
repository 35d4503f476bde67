package server

import (
	"net/http"

	"muselib/apperr"
	"muselib/logger"
)

// GenresResponse is the genre catalog payload.
type GenresResponse struct {
	Genres []string `json:"genres"`
}

// GetGenresHandler returns the distinct genres referenced by the catalog,
// served from cache when possible.
func (h *APIHandler) GetGenresHandler(w http.ResponseWriter, r *http.Request) {
	if h.listCache != nil {
		if genres := h.listCache.GetGenres(r.Context()); genres != nil {
			writeJSON(w, http.StatusOK, GenresResponse{Genres: genres})
			return
		}
	}

	genres, err := h.trackRepo.ListGenres(r.Context())
	if err != nil {
		logger.Error("failed to list genres", logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to get genres"))
		return
	}
	if genres == nil {
		genres = []string{}
	}

	if h.listCache != nil {
		h.listCache.SetGenres(r.Context(), genres)
	}

	writeJSON(w, http.StatusOK, GenresResponse{Genres: genres})
}
