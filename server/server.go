package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"muselib/cache"
	"muselib/config"
	"muselib/db"
	"muselib/logger"
	"muselib/model"
	"muselib/repository"
	"muselib/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutputPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", logger.ErrorField(err))
	}
	defer db.Close()

	if err := db.AutoMigrate(&model.Track{}); err != nil {
		logger.Fatal("failed to migrate database", logger.ErrorField(err))
	}

	// Redis is an optimization: a failed connection degrades to uncached reads.
	var listCache *cache.ListCache
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, list caching disabled", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
		listCache = cache.NewListCache(cache.RedisClient, time.Duration(cfg.ListCacheTTL)*time.Second)
	}

	trackRepo := repository.NewGormTrackRepository(db.DB)
	store := NewMinioStore(cfg.MinioBucket)

	hub := NewHub()
	go hub.Run()

	apiHandler := NewAPIHandler(trackRepo, store, listCache, hub, cfg)

	router := mux.NewRouter()

	// CORS middleware.
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	registerRoutes(router, apiHandler, hub)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", logger.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}

// registerRoutes wires the API surface. Reads are public, mutations require a
// bearer token.
func registerRoutes(router *mux.Router, h *APIHandler, hub *Hub) {
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)

	router.HandleFunc("/api/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", h.AuthMiddleware(h.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/delete", h.AuthMiddleware(h.DeleteTracksHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{slug}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/tracks/{id}", h.AuthMiddleware(h.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/upload", h.AuthMiddleware(h.UploadTrackFileHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}/file", h.AuthMiddleware(h.DeleteTrackFileHandler)).Methods(http.MethodDelete)

	router.HandleFunc("/api/genres", h.GetGenresHandler).Methods(http.MethodGet)

	router.HandleFunc("/ws/events", hub.ServeWS).Methods(http.MethodGet)

	router.PathPrefix("/media/").HandlerFunc(h.MediaHandler).Methods(http.MethodGet)
}
