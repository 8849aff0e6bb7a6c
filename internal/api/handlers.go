package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/auth"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/core"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

// apiResponse is the envelope carried by every JSON response.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type APIHandler struct {
	chats  *core.ChatService
	auth   *core.AuthService
	data   *store.DataManager
	logger *zap.Logger
}

func NewAPIHandler(chats *core.ChatService, authSvc *core.AuthService, data *store.DataManager, logger *zap.Logger) *APIHandler {
	return &APIHandler{chats: chats, auth: authSvc, data: data, logger: logger}
}

func (h *APIHandler) writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message}); err != nil {
		h.logger.Warn("failed to encode error response", zap.Error(err))
	}
}

// RequestLogger logs every request through zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// Auth endpoints

type registerRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type sessionResponse struct {
	User  *store.User `json:"user"`
	Token string      `json:"token"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.Register(req.DisplayName, req.Email, req.Password)
	switch {
	case errors.Is(err, core.ErrMissingFields), errors.Is(err, core.ErrInvalidEmail):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, core.ErrEmailTaken):
		h.writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.logger.Error("registration failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	h.writeData(w, http.StatusCreated, sessionResponse{User: user, Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.Login(req.Email, req.Password)
	if errors.Is(err, core.ErrInvalidCredentials) {
		h.writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	h.writeData(w, http.StatusOK, sessionResponse{User: user, Token: token})
}

// SessionHandler bootstraps a session from a bearer token.
func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	user, err := h.auth.Session(token)
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenExpired) {
		h.writeError(w, http.StatusUnauthorized, "Invalid or expired session")
		return
	}
	if err != nil {
		h.logger.Error("session lookup failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Failed to resolve session")
		return
	}
	h.writeData(w, http.StatusOK, user)
}
