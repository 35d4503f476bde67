package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"muselib/apperr"
	"muselib/core/auth"
	"muselib/logger"
)

type contextKey string

const usernameKey contextKey = "username"

// LoginRequest is the login endpoint's body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// LoginHandler authenticates the admin principal and issues a JWT.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.InvalidArgument("Invalid request body"))
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, apperr.InvalidArgument("Username and password are required"))
		return
	}

	if h.cfg.AdminPasswordHash == "" {
		logger.Error("login attempted with no admin credentials configured")
		writeError(w, apperr.Internal("Admin credentials not configured"))
		return
	}

	if req.Username != h.cfg.AdminUser || !auth.CheckPasswordHash(req.Password, h.cfg.AdminPasswordHash) {
		logger.Warn("rejected login", logger.String("username", req.Username))
		writeJSON(w, http.StatusUnauthorized, map[string]*apperr.Error{
			"error": {Kind: apperr.KindInvalidArgument, Message: "Invalid username or password"},
		})
		return
	}

	token, err := auth.GenerateToken(req.Username, h.cfg.JWTSecret)
	if err != nil {
		logger.Error("failed to generate token", logger.ErrorField(err))
		writeError(w, apperr.Internal("Failed to generate token"))
		return
	}

	logger.Info("login succeeded", logger.String("username", req.Username))
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, Username: req.Username})
}

// AuthMiddleware checks for a valid bearer token on mutating endpoints.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(parts[1], h.cfg.JWTSecret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
