package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"muselib/apperr"
	"muselib/cache"
	"muselib/config"
	"muselib/logger"
	"muselib/repository"
)

// ObjectStore is the audio asset storage collaborator.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, objectName string) error
}

// APIHandler handles all API requests.
type APIHandler struct {
	trackRepo repository.TrackRepository
	store     ObjectStore
	listCache *cache.ListCache
	hub       *Hub
	cfg       *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	trackRepo repository.TrackRepository,
	store ObjectStore,
	listCache *cache.ListCache,
	hub *Hub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		trackRepo: trackRepo,
		store:     store,
		listCache: listCache,
		hub:       hub,
		cfg:       cfg,
	}
}

// acceptedAudioTypes are the declared content types the upload endpoint takes.
var acceptedAudioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/x-wav": true,
}

var imageExtensions = regexp.MustCompile(`\.(jpg|jpeg|png|gif|bmp|webp|svg)$`)

// isValidImageURL checks that a URL parses and its path looks like an image.
func isValidImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return imageExtensions.MatchString(strings.ToLower(u.Path))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError serializes an error as {"error":{"kind","message"}}. Callers
// branch on the kind field, not the message.
func writeError(w http.ResponseWriter, appErr *apperr.Error) {
	writeJSON(w, statusForKind(appErr.Kind), map[string]*apperr.Error{"error": appErr})
}

// invalidateAndBroadcast drops cached list pages and tells connected clients
// that the catalog changed.
func (h *APIHandler) invalidateAndBroadcast(ctx context.Context, eventType, trackID string) {
	if h.listCache != nil {
		h.listCache.InvalidateTracks(ctx)
	}
	if h.hub != nil {
		h.hub.Broadcast(Event{Type: eventType, TrackID: trackID})
	}
}
