package server

import (
	"context"
	"io"
	"net/http"
	"strings"

	"muselib/logger"
	"muselib/storage"
)

// minioStore adapts the storage package to the ObjectStore interface.
type minioStore struct {
	bucket string
}

// NewMinioStore returns an ObjectStore backed by the shared MinIO client.
func NewMinioStore(bucket string) ObjectStore {
	return &minioStore{bucket: bucket}
}

func (s *minioStore) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) error {
	return storage.PutObject(ctx, s.bucket, objectName, r, size, contentType)
}

func (s *minioStore) Remove(ctx context.Context, objectName string) error {
	return storage.RemoveObject(ctx, s.bucket, objectName)
}

func mediaContentType(objectPath string) string {
	switch {
	case strings.HasSuffix(objectPath, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(objectPath, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(objectPath, ".jpg"), strings.HasSuffix(objectPath, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(objectPath, ".png"):
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// MediaHandler streams stored objects (audio, covers) back to the browser.
func (h *APIHandler) MediaHandler(w http.ResponseWriter, r *http.Request) {
	objectPath := strings.TrimPrefix(r.URL.Path, "/media/")
	if objectPath == "" {
		http.Error(w, "Object path is required", http.StatusBadRequest)
		return
	}

	object, err := storage.GetObject(r.Context(), h.cfg.MinioBucket, objectPath)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer object.Close()

	// Stat surfaces missing objects before any body bytes are written.
	if _, err := object.Stat(); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mediaContentType(objectPath))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, object); err != nil {
		logger.Error("error serving media file", logger.String("object", objectPath), logger.ErrorField(err))
	}
}
