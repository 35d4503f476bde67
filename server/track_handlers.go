package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"muselib/apperr"
	"muselib/logger"
	"muselib/model"
	"muselib/query"
	"muselib/repository"
	"muselib/slug"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadSize = 100 << 20 // 100MB

// GetTracksHandler returns one page of tracks. Raw query parameters go through
// the same codec the client uses, so malformed input falls back to defaults
// instead of failing.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	q := query.Decode(query.ParseParams(r.URL.RawQuery))

	if h.listCache != nil {
		if page := h.listCache.GetPage(r.Context(), q); page != nil {
			writeJSON(w, http.StatusOK, page)
			return
		}
	}

	tracks, total, err := h.trackRepo.List(r.Context(), q)
	if err != nil {
		logger.Error("failed to list tracks", logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to get tracks"))
		return
	}

	if tracks == nil {
		tracks = []model.Track{}
	}
	page := &model.PaginatedTracks{
		Data: tracks,
		Meta: model.PaginationMeta{
			Total:      int(total),
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: (int(total) + q.Limit - 1) / q.Limit,
		},
	}

	if h.listCache != nil {
		h.listCache.SetPage(r.Context(), q, page)
	}

	writeJSON(w, http.StatusOK, page)
}

// GetTrackHandler returns the track whose slug matches.
func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	trackSlug := mux.Vars(r)["slug"]

	track, err := h.trackRepo.GetBySlug(r.Context(), trackSlug)
	if err != nil {
		logger.Error("failed to get track", logger.String("slug", trackSlug), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to get track"))
		return
	}
	if track == nil {
		writeError(w, apperr.NotFound("Track not found"))
		return
	}

	writeJSON(w, http.StatusOK, track)
}

// CreateTrackRequest is the create endpoint's body.
type CreateTrackRequest struct {
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Album      string   `json:"album"`
	Genres     []string `json:"genres"`
	CoverImage string   `json:"coverImage"`
}

// CreateTrackHandler creates a track, deriving and reserving its slug.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidArgument("Invalid request body"))
		return
	}

	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Artist) == "" {
		writeError(w, apperr.InvalidArgument("Title and artist are required"))
		return
	}
	if req.CoverImage != "" && !isValidImageURL(req.CoverImage) {
		writeError(w, apperr.InvalidArgument("Cover image must be a valid image URL"))
		return
	}

	trackSlug := slug.Make(req.Title)

	existing, err := h.trackRepo.GetBySlug(r.Context(), trackSlug)
	if err != nil {
		logger.Error("failed to check slug", logger.String("slug", trackSlug), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to create track"))
		return
	}
	if existing != nil {
		writeError(w, apperr.Conflict("A track with this title already exists"))
		return
	}

	track := &model.Track{
		ID:         uuid.NewString(),
		Title:      req.Title,
		Artist:     req.Artist,
		Album:      req.Album,
		Genres:     req.Genres,
		Slug:       trackSlug,
		CoverImage: req.CoverImage,
	}
	if track.Genres == nil {
		track.Genres = []string{}
	}

	if err := h.trackRepo.Create(r.Context(), track); err != nil {
		// The unique index catches creates that raced past the lookup above.
		if err == repository.ErrDuplicateSlug {
			writeError(w, apperr.Conflict("A track with this title already exists"))
			return
		}
		logger.Error("failed to create track", logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to create track"))
		return
	}

	logger.Info("track created", logger.String("id", track.ID), logger.String("title", track.Title))
	h.invalidateAndBroadcast(r.Context(), EventTrackCreated, track.ID)
	writeJSON(w, http.StatusCreated, track)
}

// UpdateTrackHandler applies a partial update. Omitted fields are left
// untouched; a changed title recomputes the slug.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	track, err := h.trackRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to update track"))
		return
	}
	if track == nil {
		writeError(w, apperr.NotFound("Track not found"))
		return
	}

	var req model.TrackUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidArgument("Invalid request body"))
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, apperr.InvalidArgument("Title cannot be empty"))
		return
	}
	if req.Artist != nil && strings.TrimSpace(*req.Artist) == "" {
		writeError(w, apperr.InvalidArgument("Artist cannot be empty"))
		return
	}
	if req.CoverImage != nil && *req.CoverImage != "" && !isValidImageURL(*req.CoverImage) {
		writeError(w, apperr.InvalidArgument("Cover image must be a valid image URL"))
		return
	}

	if req.Title != nil && *req.Title != track.Title {
		newSlug := slug.Make(*req.Title)
		other, err := h.trackRepo.GetBySlug(r.Context(), newSlug)
		if err != nil {
			logger.Error("failed to check slug", logger.String("slug", newSlug), logger.ErrorField(err))
			writeError(w, apperr.Internal("Failed to update track"))
			return
		}
		if other != nil && other.ID != track.ID {
			writeError(w, apperr.Conflict("A track with this title already exists"))
			return
		}
		track.Slug = newSlug
	}

	if req.Title != nil {
		track.Title = *req.Title
	}
	if req.Artist != nil {
		track.Artist = *req.Artist
	}
	if req.Album != nil {
		track.Album = *req.Album
	}
	if req.Genres != nil {
		track.Genres = *req.Genres
	}
	if req.CoverImage != nil {
		track.CoverImage = *req.CoverImage
	}
	if req.AudioFile != nil {
		track.AudioFile = *req.AudioFile
	}

	if err := h.trackRepo.Update(r.Context(), track); err != nil {
		if err == repository.ErrDuplicateSlug {
			writeError(w, apperr.Conflict("A track with this title already exists"))
			return
		}
		logger.Error("failed to update track", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to update track"))
		return
	}

	h.invalidateAndBroadcast(r.Context(), EventTrackUpdated, track.ID)
	writeJSON(w, http.StatusOK, track)
}

// DeleteResponse reports the outcome of a single delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteTrackHandler deletes one track. Deleting an absent track is not an
// error: the response carries success=false with a not-found message.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.trackRepo.Delete(r.Context(), id)
	if err != nil {
		logger.Error("failed to delete track", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to delete track"))
		return
	}

	if deleted {
		h.invalidateAndBroadcast(r.Context(), EventTrackDeleted, id)
		writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "Track deleted successfully"})
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Success: false, Message: "Track not found"})
}

// BatchDeleteRequest is the batch delete endpoint's body.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// DeleteTracksHandler deletes a batch of tracks, partitioning the input into
// deleted and not-found ids. Partial failure is a normal result.
func (h *APIHandler) DeleteTracksHandler(w http.ResponseWriter, r *http.Request) {
	var req BatchDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidArgument("Invalid request body"))
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, apperr.InvalidArgument("Track IDs are required"))
		return
	}

	result := model.BatchDeleteResult{Success: []string{}, Failed: []string{}}
	for _, id := range req.IDs {
		deleted, err := h.trackRepo.Delete(r.Context(), id)
		if err != nil {
			logger.Error("failed to delete track in batch", logger.String("id", id), logger.ErrorField(err))
			result.Failed = append(result.Failed, id)
			continue
		}
		if deleted {
			result.Success = append(result.Success, id)
		} else {
			result.Failed = append(result.Failed, id)
		}
	}

	if len(result.Success) > 0 {
		h.invalidateAndBroadcast(r.Context(), EventTrackDeleted, strings.Join(result.Success, ","))
	}
	writeJSON(w, http.StatusOK, result)
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	if base == "" || base == "." {
		base = "audio"
	}
	return base
}

// UploadTrackFileHandler attaches an uploaded audio file to a track, replacing
// any previous file.
func (h *APIHandler) UploadTrackFileHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	track, err := h.trackRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to upload track file"))
		return
	}
	if track == nil {
		writeError(w, apperr.NotFound("Track not found"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, apperr.InvalidArgument("Invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.InvalidArgument("Audio file is required"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !acceptedAudioTypes[contentType] {
		writeError(w, apperr.InvalidArgument(fmt.Sprintf("Unsupported audio type %q", contentType)))
		return
	}

	objectName := fmt.Sprintf("audio/%s/%s", track.ID, sanitizeFilename(header.Filename))
	if err := h.store.Put(r.Context(), objectName, file, header.Size, contentType); err != nil {
		logger.Error("failed to store audio file",
			logger.String("id", id),
			logger.String("object", objectName),
			logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to store audio file"))
		return
	}

	// Replace semantics: drop the previous object once the new one is in.
	if track.AudioFile != "" && track.AudioFile != objectName {
		if err := h.store.Remove(r.Context(), track.AudioFile); err != nil {
			logger.Warn("failed to remove replaced audio file",
				logger.String("object", track.AudioFile),
				logger.ErrorField(err))
		}
	}

	track.AudioFile = objectName
	if err := h.trackRepo.Update(r.Context(), track); err != nil {
		logger.Error("failed to update track after upload", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to upload track file"))
		return
	}

	logger.Info("audio file uploaded",
		logger.String("id", track.ID),
		logger.String("object", objectName),
		logger.Int64("size", header.Size))
	h.invalidateAndBroadcast(r.Context(), EventFileUploaded, track.ID)
	writeJSON(w, http.StatusOK, track)
}

// DeleteTrackFileHandler clears the track's audio file reference. Deleting
// when no file exists is a no-op success.
func (h *APIHandler) DeleteTrackFileHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	track, err := h.trackRepo.GetByID(r.Context(), id)
	if err != nil {
		logger.Error("failed to get track", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to delete track file"))
		return
	}
	if track == nil {
		writeError(w, apperr.NotFound("Track not found"))
		return
	}

	if track.AudioFile == "" {
		writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "No audio file to delete"})
		return
	}

	if err := h.store.Remove(r.Context(), track.AudioFile); err != nil {
		logger.Error("failed to remove audio file",
			logger.String("object", track.AudioFile),
			logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to delete track file"))
		return
	}

	track.AudioFile = ""
	if err := h.trackRepo.Update(r.Context(), track); err != nil {
		logger.Error("failed to update track after file delete", logger.String("id", id), logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to delete track file"))
		return
	}

	h.invalidateAndBroadcast(r.Context(), EventFileDeleted, track.ID)
	writeJSON(w, http.StatusOK, DeleteResponse{Success: true, Message: "Track file deleted successfully"})
}
